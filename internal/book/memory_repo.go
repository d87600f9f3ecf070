package book

import (
	"context"
	"sync"

	"bookstore/internal/query"
)

// MemoryRepo keeps books in process memory. It backs STORAGE=memory and the
// service tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	books  []Book
	nextID int64
}

func NewMemoryRepo(seed ...Book) *MemoryRepo {
	r := &MemoryRepo{nextID: 1}
	for _, b := range seed {
		if b.ID == 0 {
			b.ID = r.nextID
		}
		if b.ID >= r.nextID {
			r.nextID = b.ID + 1
		}
		r.books = append(r.books, clone(b))
	}
	return r
}

func clone(b Book) Book {
	if b.PublicationYear != nil {
		year := *b.PublicationYear
		b.PublicationYear = &year
	}
	return b
}

func (r *MemoryRepo) Count(ctx context.Context, c query.Criteria) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := query.Build(c, Attributes)
	var n int64
	for _, b := range r.books {
		if match(b) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Find(ctx context.Context, c query.Criteria, order query.Order, skip, take int) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := query.Window(query.Select(r.books, c, Attributes, order), skip, take)
	out := make([]Book, 0, len(selected))
	for _, b := range selected {
		out = append(out, clone(b))
	}
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return clone(r.books[i]), nil
	}
	return Book{}, ErrNotFound
}

func (r *MemoryRepo) Create(ctx context.Context, b *Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.books {
		if existing.sameIdentity(*b) {
			return ErrDuplicate
		}
	}
	b.ID = r.nextID
	r.nextID++
	r.books = append(r.books, clone(*b))
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, b *Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(b.ID)
	if i < 0 {
		return ErrNotFound
	}
	for _, existing := range r.books {
		if existing.ID != b.ID && existing.sameIdentity(*b) {
			return ErrDuplicate
		}
	}
	updated := clone(*b)
	updated.CreatedAt = r.books[i].CreatedAt
	r.books[i] = updated
	b.CreatedAt = updated.CreatedAt
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.books = append(r.books[:i], r.books[i+1:]...)
	return nil
}

// indexOf must be called with the lock held.
func (r *MemoryRepo) indexOf(id int64) int {
	for i, b := range r.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

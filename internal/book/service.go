package book

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/pagination"
	"bookstore/internal/query"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns one unfiltered page of books ordered by name.
func (s *Service) List(ctx context.Context, index, size int) (pagination.PageResult[BookDTO], error) {
	return s.page(ctx, pagination.NewPageFilter(index, size), nil)
}

// Search returns one page of the books matching every supplied field of f.
func (s *Service) Search(ctx context.Context, f Filter) (pagination.PageResult[BookDTO], error) {
	return s.page(ctx, pagination.NewPageFilter(f.Index, f.Size), f.Criteria())
}

func (s *Service) page(ctx context.Context, pf pagination.PageFilter, c query.Criteria) (pagination.PageResult[BookDTO], error) {
	return pagination.Paginate(ctx, s.repo, pf, c, OrderByName, ToDTO)
}

// GetByID returns a single book.
func (s *Service) GetByID(ctx context.Context, id int64) (BookDTO, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return BookDTO{}, err
	}
	return ToDTO(b), nil
}

// Create stores a new book built from in. Edition defaults to 1.
func (s *Service) Create(ctx context.Context, in Input) (BookDTO, error) {
	b := Book{Edition: 1}
	in.ApplyTo(&b)

	if err := s.ensureUnique(ctx, b); err != nil {
		return BookDTO{}, err
	}

	now := s.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	if err := s.repo.Create(ctx, &b); err != nil {
		return BookDTO{}, err
	}
	return ToDTO(b), nil
}

// Update applies the non-nil fields of in to an existing book.
func (s *Service) Update(ctx context.Context, id int64, in Input) (BookDTO, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return BookDTO{}, err
	}

	before := b
	in.ApplyTo(&b)
	if !b.sameIdentity(before) {
		if err := s.ensureUnique(ctx, b); err != nil {
			return BookDTO{}, err
		}
	}

	b.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &b); err != nil {
		return BookDTO{}, err
	}
	return ToDTO(b), nil
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ensureUnique fails with ErrDuplicate when a different book shares b's
// identity. Repositories enforce the same rule on write.
func (s *Service) ensureUnique(ctx context.Context, b Book) error {
	found, err := s.repo.Find(ctx, identityCriteria(b), OrderByName, 0, 2)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	for _, other := range found {
		if other.ID != b.ID {
			return ErrDuplicate
		}
	}
	return nil
}

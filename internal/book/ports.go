package book

import (
	"context"

	"bookstore/internal/pagination"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage. Count and Find
// make it a pagination source.
type Repository interface {
	pagination.Source[Book]
	GetByID(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}

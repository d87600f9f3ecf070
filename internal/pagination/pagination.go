package pagination

import (
	"context"
	"errors"
	"fmt"
	"math"

	"bookstore/internal/query"
)

// ErrNoMatch is returned when a page or search query matches no items at all.
var ErrNoMatch = errors.New("no resources found")

// PageFilter translates a 1-based page index and a page size into skip/take.
type PageFilter struct {
	Index int
	Size  int
	Skip  int
	Take  int
}

// NewPageFilter builds a PageFilter. Range checks belong to the request
// boundary; Skip saturates at math.MaxInt instead of wrapping, so a huge
// index still lands past the last page.
func NewPageFilter(index, size int) PageFilter {
	return PageFilter{
		Index: index,
		Size:  size,
		Skip:  skipFor(index, size),
		Take:  size,
	}
}

func skipFor(index, size int) int {
	if index <= 1 || size <= 0 {
		return 0
	}
	if index-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (index - 1) * size
}

// PageResult is one page of items plus the metadata needed to walk the rest.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Index      int   `json:"index"`
	Size       int   `json:"size"`
	PageCount  int64 `json:"page_count"`
}

// NewPageResult packages items with the paging metadata of filter.
func NewPageResult[T any](items []T, filter PageFilter, total int64) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		TotalCount: total,
		Index:      filter.Index,
		Size:       filter.Size,
		PageCount:  PageCount(total, filter.Size),
	}
}

// PageCount is ceil(total/size).
func PageCount(total int64, size int) int64 {
	if size <= 0 || total <= 0 {
		return 0
	}
	s := int64(size)
	return (total + s - 1) / s
}

// Meta returns the paging fields in the shape used by the response envelope.
func (p PageResult[T]) Meta() map[string]any {
	return map[string]any{
		"index":       p.Index,
		"size":        p.Size,
		"total_count": p.TotalCount,
		"page_count":  p.PageCount,
	}
}

// Source is an ordered, filterable collection. Find must return items in the
// requested order with ties resolved deterministically.
type Source[E any] interface {
	Count(ctx context.Context, c query.Criteria) (int64, error)
	Find(ctx context.Context, c query.Criteria, order query.Order, skip, take int) ([]E, error)
}

// Paginate counts the items matching c, then fetches the window selected by
// filter and maps every item with mapFn.
func Paginate[E, T any](
	ctx context.Context,
	src Source[E],
	filter PageFilter,
	c query.Criteria,
	order query.Order,
	mapFn func(E) T,
) (PageResult[T], error) {
	total, err := src.Count(ctx, c)
	if err != nil {
		return PageResult[T]{}, fmt.Errorf("count: %w", err)
	}
	if total < 1 {
		return PageResult[T]{}, ErrNoMatch
	}

	found, err := src.Find(ctx, c, order, filter.Skip, filter.Take)
	if err != nil {
		return PageResult[T]{}, fmt.Errorf("find: %w", err)
	}

	items := make([]T, 0, len(found))
	for _, e := range found {
		items = append(items, mapFn(e))
	}
	return NewPageResult(items, filter, total), nil
}

package book

import (
	"math"
	"strings"
	"time"

	"bookstore/internal/httpx"
	"bookstore/internal/query"
)

// BookDTO is the transport representation of a Book.
type BookDTO struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	AuthorName      string    `json:"author_name"`
	Publisher       string    `json:"publisher,omitempty"`
	Genre           Genre     `json:"genre"`
	Edition         int       `json:"edition"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToDTO copies a Book field by field.
func ToDTO(b Book) BookDTO {
	return BookDTO{
		ID:              b.ID,
		Name:            b.Name,
		AuthorName:      b.AuthorName,
		Publisher:       b.Publisher,
		Genre:           b.Genre,
		Edition:         b.Edition,
		PublicationYear: b.PublicationYear,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// Input is the body of create and patch requests. Nil fields are left
// untouched by ApplyTo.
type Input struct {
	Name            *string `json:"name" validate:"omitempty,notblank,max=200"`
	AuthorName      *string `json:"author_name" validate:"omitempty,notblank,max=200"`
	Publisher       *string `json:"publisher" validate:"omitempty,max=200"`
	Genre           *Genre  `json:"genre" validate:"omitempty,genre"`
	Edition         *int    `json:"edition" validate:"omitempty,gte=1,lte=1000"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=1,lte=9999"`
}

// ApplyTo copies every non-nil field onto b.
func (in Input) ApplyTo(b *Book) {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.AuthorName != nil {
		b.AuthorName = strings.TrimSpace(*in.AuthorName)
	}
	if in.Publisher != nil {
		b.Publisher = strings.TrimSpace(*in.Publisher)
	}
	if in.Genre != nil {
		b.Genre = *in.Genre
	}
	if in.Edition != nil {
		b.Edition = *in.Edition
	}
	if in.PublicationYear != nil {
		year := *in.PublicationYear
		b.PublicationYear = &year
	}
}

// missingForCreate lists the fields a new book cannot do without.
func (in Input) missingForCreate() []httpx.ErrorDetail {
	var details []httpx.ErrorDetail
	if in.Name == nil {
		details = append(details, httpx.ErrorDetail{Field: FieldName, Message: "name is required"})
	}
	if in.AuthorName == nil {
		details = append(details, httpx.ErrorDetail{Field: FieldAuthorName, Message: "author_name is required"})
	}
	if in.Genre == nil {
		details = append(details, httpx.ErrorDetail{Field: FieldGenre, Message: "genre is required"})
	}
	return details
}

// Filter carries the paging parameters and optional search fields of a
// search request.
type Filter struct {
	Index           int     `json:"index" validate:"gte=1,lte=2147483647"`
	Size            int     `json:"size" validate:"gte=1,lte=30"`
	Name            *string `json:"name" validate:"omitempty,max=200"`
	AuthorName      *string `json:"author_name" validate:"omitempty,max=200"`
	Publisher       *string `json:"publisher" validate:"omitempty,max=200"`
	Genre           *Genre  `json:"genre" validate:"omitempty,genre"`
	Edition         *int    `json:"edition" validate:"omitempty,gte=1"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=1"`
}

const (
	DefaultIndex = 1
	MaxIndex     = math.MaxInt32
	DefaultSize  = 5
	MaxSize      = 30
)

// NewFilter returns a Filter with default paging and no search fields.
func NewFilter() Filter {
	return Filter{Index: DefaultIndex, Size: DefaultSize}
}

// dropEmpty clears text fields sent as empty strings so they count as absent.
func (f *Filter) dropEmpty() {
	for _, p := range []**string{&f.Name, &f.AuthorName, &f.Publisher} {
		if *p != nil && **p == "" {
			*p = nil
		}
	}
	if f.Genre != nil && *f.Genre == "" {
		f.Genre = nil
	}
}

// Criteria keeps only the fields that were supplied: text fields match by
// case-insensitive substring, genre, edition and year match exactly.
func (f Filter) Criteria() query.Criteria {
	c := query.Criteria{}.
		ContainsIf(FieldName, f.Name).
		ContainsIf(FieldAuthorName, f.AuthorName).
		ContainsIf(FieldPublisher, f.Publisher)
	if f.Genre != nil && *f.Genre != "" {
		c = c.Equals(FieldGenre, string(*f.Genre))
	}
	c = query.EqualsIf(c, FieldEdition, f.Edition)
	c = query.EqualsIf(c, FieldPublicationYear, f.PublicationYear)
	return c
}

// identityCriteria matches books sharing b's uniqueness key.
func identityCriteria(b Book) query.Criteria {
	return query.Criteria{}.
		Equals(FieldAuthorName, b.AuthorName).
		Equals(FieldName, b.Name).
		Equals(FieldGenre, string(b.Genre)).
		Equals(FieldEdition, b.Edition)
}

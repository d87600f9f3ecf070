package book

import (
	"errors"
	"time"

	"bookstore/internal/query"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicate is returned when another book already has the same
	// author name, name, genre and edition.
	ErrDuplicate = errors.New("book already exists")
)

type Genre string

const (
	GenreFantasy        Genre = "Fantasy"
	GenreFiction        Genre = "Fiction"
	GenreScienceFiction Genre = "Science Fiction"
	GenreMystery        Genre = "Mystery"
	GenreRomance        Genre = "Romance"
	GenreHorror         Genre = "Horror"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenreScience        Genre = "Science"
	GenreTechnology     Genre = "Technology"
	GenrePhilosophy     Genre = "Philosophy"
	GenrePoetry         Genre = "Poetry"
)

// Genres lists every accepted genre.
var Genres = []Genre{
	GenreFantasy, GenreFiction, GenreScienceFiction, GenreMystery, GenreRomance, GenreHorror,
	GenreBiography, GenreHistory, GenreScience, GenreTechnology, GenrePhilosophy, GenrePoetry,
}

func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Book represents a catalog entry.
type Book struct {
	ID              int64
	Name            string
	AuthorName      string
	Publisher       string
	Genre           Genre
	Edition         int
	PublicationYear *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// sameIdentity reports whether two books collide on the uniqueness key.
func (b Book) sameIdentity(o Book) bool {
	return b.AuthorName == o.AuthorName &&
		b.Name == o.Name &&
		b.Genre == o.Genre &&
		b.Edition == o.Edition
}

// Criteria field names understood by every repository.
const (
	FieldID              = "id"
	FieldName            = "name"
	FieldAuthorName      = "author_name"
	FieldPublisher       = "publisher"
	FieldGenre           = "genre"
	FieldEdition         = "edition"
	FieldPublicationYear = "publication_year"
)

// OrderByName is the deterministic order used by every book listing.
var OrderByName = query.Order{Field: FieldName, TieBreak: FieldID}

// Attributes exposes book fields to the in-memory predicate builder. Genre is
// compared as a plain string, matching what Filter.Criteria emits.
var Attributes = query.Attributes[Book]{
	FieldID:         func(b Book) any { return b.ID },
	FieldName:       func(b Book) any { return b.Name },
	FieldAuthorName: func(b Book) any { return b.AuthorName },
	FieldPublisher:  func(b Book) any { return b.Publisher },
	FieldGenre:      func(b Book) any { return string(b.Genre) },
	FieldEdition:    func(b Book) any { return b.Edition },
	FieldPublicationYear: func(b Book) any {
		if b.PublicationYear == nil {
			return nil
		}
		return *b.PublicationYear
	},
}

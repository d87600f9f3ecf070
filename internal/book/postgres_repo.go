package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// filterColumns is used in WHERE clauses; sortColumns in ORDER BY, where the
// C collation keeps the order byte-wise and identical to MemoryRepo.
var (
	filterColumns = query.Columns{
		FieldID:              "b.id",
		FieldName:            "b.name",
		FieldAuthorName:      "b.author_name",
		FieldPublisher:       "b.publisher",
		FieldGenre:           "b.genre",
		FieldEdition:         "b.edition",
		FieldPublicationYear: "b.publication_year",
	}
	sortColumns = query.Columns{
		FieldID:              "b.id",
		FieldName:            `b.name COLLATE "C"`,
		FieldAuthorName:      `b.author_name COLLATE "C"`,
		FieldPublisher:       `b.publisher COLLATE "C"`,
		FieldGenre:           `b.genre COLLATE "C"`,
		FieldEdition:         "b.edition",
		FieldPublicationYear: "b.publication_year",
	}
)

const selectColumns = `b.id, b.name, b.author_name, b.publisher, b.genre, b.edition,
		       b.publication_year, b.created_at, b.updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func countSQL(c query.Criteria) (string, []any) {
	where, args := c.Where(filterColumns, 1)
	return strings.TrimSpace("SELECT COUNT(*) FROM books b " + where), args
}

func findSQL(c query.Criteria, order query.Order, skip, take int) (string, []any) {
	where, args := c.Where(filterColumns, 1)
	argn := len(args) + 1
	sql := fmt.Sprintf(`
		SELECT %s
		FROM books b
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		selectColumns, where, order.OrderBy(sortColumns), argn, argn+1)
	return sql, append(args, take, skip)
}

func (r *PostgresRepo) Count(ctx context.Context, c query.Criteria) (int64, error) {
	sql, args := countSQL(c)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int64
	if err := r.db.QueryRow(timeoutCtx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostgresRepo) Find(ctx context.Context, c query.Criteria, order query.Order, skip, take int) ([]Book, error) {
	sql, args := findSQL(c, order, skip, take)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBook(row pgx.Row) (Book, error) {
	var (
		b         Book
		genre     string
		publisher *string
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.AuthorName, &publisher, &genre, &b.Edition,
		&b.PublicationYear, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return Book{}, err
	}
	b.Genre = Genre(genre)
	if publisher != nil {
		b.Publisher = *publisher
	}
	return b, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	sql := fmt.Sprintf(`SELECT %s FROM books b WHERE b.id = $1`, selectColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (name, author_name, publisher, genre, edition, publication_year, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql,
		b.Name, b.AuthorName, b.Publisher, string(b.Genre), b.Edition, b.PublicationYear,
		b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	return mapWriteErr(err)
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const sql = `
		UPDATE books
		SET name = $2, author_name = $3, publisher = NULLIF($4, ''), genre = $5,
		    edition = $6, publication_year = $7, updated_at = $8
		WHERE id = $1
		RETURNING created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql,
		b.ID, b.Name, b.AuthorName, b.Publisher, string(b.Genre), b.Edition, b.PublicationYear,
		b.UpdatedAt,
	).Scan(&b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return mapWriteErr(err)
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/domain"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/database"
	apperrors "github.com/Riiturii/oc-monvieuxgrimoire/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
// Ratings are stored as a JSONB column on the book row so the whole
// record is read and written as one unit.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = `id, user_id, title, author, year, genre, image_url, ratings, average_rating, created_at, updated_at`

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetBook", query)
	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", id)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return b, nil
}

// List returns every book in insertion order.
func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY seq ASC`

	ctx, end := database.TraceQuery(ctx, "ListBooks", query)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	end(err)
	return books, err
}

// Save inserts the book or replaces the existing row wholesale. The
// last write wins; concurrent rating appends may overwrite each other,
// which matches the single-record consistency model.
func (r *BookRepository) Save(ctx context.Context, b *domain.Book) error {
	ratingsJSON, err := json.Marshal(b.Ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings: %w", err)
	}

	b.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO books (id, user_id, title, author, year, genre, image_url, ratings, average_rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			author = EXCLUDED.author,
			year = EXCLUDED.year,
			genre = EXCLUDED.genre,
			image_url = EXCLUDED.image_url,
			ratings = EXCLUDED.ratings,
			average_rating = EXCLUDED.average_rating,
			updated_at = EXCLUDED.updated_at`

	ctx, end := database.TraceQuery(ctx, "SaveBook", query)
	_, err = r.pool.Exec(ctx, query,
		b.ID,
		b.UserID,
		b.Title,
		b.Author,
		b.Year,
		b.Genre,
		b.ImageURL,
		ratingsJSON,
		b.AverageRating,
		b.CreatedAt,
		b.UpdatedAt,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}

	return nil
}

// Delete removes a book record by its ID.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM books WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteBook", query)
	ct, err := r.pool.Exec(ctx, query, id)
	end(err)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}

// ListBestRated returns the top n books by average rating. Earlier
// insertions win ties so the ranking is stable across reads.
func (r *BookRepository) ListBestRated(ctx context.Context, n int) ([]domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY average_rating DESC, seq ASC
		LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "ListBestRatedBooks", query)
	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list best rated books: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	end(err)
	return books, err
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var (
		b           domain.Book
		ratingsJSON []byte
	)

	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Author,
		&b.Year,
		&b.Genre,
		&b.ImageURL,
		&ratingsJSON,
		&b.AverageRating,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ratingsJSON, &b.Ratings); err != nil {
		return nil, fmt.Errorf("unmarshal ratings: %w", err)
	}
	if b.Ratings == nil {
		b.Ratings = []domain.Rating{}
	}

	return &b, nil
}

func collectBooks(rows pgx.Rows) ([]domain.Book, error) {
	var books []domain.Book

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

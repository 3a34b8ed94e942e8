package repository

import (
	"context"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/domain"
)

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// List returns every book in the catalog in insertion order.
	List(ctx context.Context) ([]domain.Book, error)

	// Save writes the full book record, inserting it if absent and
	// replacing it otherwise. Ratings and the stored average travel
	// with the record.
	Save(ctx context.Context, book *domain.Book) error

	// Delete removes a book record by its identifier.
	Delete(ctx context.Context, id string) error

	// ListBestRated returns the top n books ordered by average rating
	// descending, ties broken by insertion order.
	ListBestRated(ctx context.Context, n int) ([]domain.Book, error)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/asset"
	"github.com/Riiturii/oc-monvieuxgrimoire/internal/cache"
	"github.com/Riiturii/oc-monvieuxgrimoire/internal/domain"
	"github.com/Riiturii/oc-monvieuxgrimoire/internal/event"
	"github.com/Riiturii/oc-monvieuxgrimoire/internal/repository"
	apperrors "github.com/Riiturii/oc-monvieuxgrimoire/pkg/errors"
)

// BestRatedCount is how many books the best-rated ranking returns.
const BestRatedCount = 3

// CatalogService implements the business logic for the book catalog:
// CRUD on books, crowd-sourced ratings, and the coordinated lifecycle
// of each book's cover image.
type CatalogService struct {
	repo     repository.BookRepository
	assets   *asset.Manager
	cache    *cache.BestRatedCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	repo repository.BookRepository,
	assets *asset.Manager,
	bestRated *cache.BestRatedCache,
	producer *event.Producer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:     repo,
		assets:   assets,
		cache:    bestRated,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	UserID    string
	Title     string
	Author    string
	Year      int
	Genre     string
	Grade     int // the creator's seed rating
	ImageData []byte
}

// UpdateBookInput holds the parameters for updating a book. ImageData
// is optional; when nil the existing cover is kept.
type UpdateBookInput struct {
	UserID    string
	Title     string
	Author    string
	Year      int
	Genre     string
	ImageData []byte
}

// CreateBook validates the input, stores the normalized cover, and
// persists the new book with the creator's seed rating. If persistence
// fails the freshly stored cover is cleaned up so no orphan remains.
func (s *CatalogService) CreateBook(ctx context.Context, input *CreateBookInput) (*domain.Book, error) {
	if err := validateBookFields(input.Title, input.Author, input.Year, input.Genre); err != nil {
		return nil, err
	}
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if !domain.IsValidGrade(input.Grade) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("grade must be between %d and %d", domain.MinGrade, domain.MaxGrade))
	}
	if len(input.ImageData) == 0 {
		return nil, apperrors.InvalidInput("cover image is required")
	}

	stored, err := s.assets.Store(ctx, input.ImageData)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Title:     input.Title,
		Author:    input.Author,
		Year:      input.Year,
		Genre:     input.Genre,
		ImageURL:  stored.URL,
		Ratings:   []domain.Rating{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	book.AddRating(input.UserID, input.Grade)

	if err := s.repo.Save(ctx, book); err != nil {
		// Clean up the stored cover so it does not leak.
		if relErr := s.assets.Release(ctx, stored.URL); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to clean up cover after save error",
				slog.String("key", stored.Key),
				slog.String("error", relErr.Error()),
			)
		}
		return nil, fmt.Errorf("save book: %w", err)
	}

	s.invalidateBestRated(ctx)

	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("user_id", input.UserID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// GetBook retrieves a single book by its ID.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListBooks returns every book in the catalog.
func (s *CatalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBook replaces a book's descriptive fields and, when a new
// cover is supplied, swaps the stored image. Only the owner may
// update. Ratings and ownership are never touched by an update.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, input *UpdateBookInput) (*domain.Book, error) {
	if err := validateBookFields(input.Title, input.Author, input.Year, input.Genre); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if book.UserID != input.UserID {
		return nil, apperrors.Unauthorized("only the creator can modify this book")
	}

	oldImageURL := ""
	if len(input.ImageData) > 0 {
		stored, err := s.assets.Store(ctx, input.ImageData)
		if err != nil {
			return nil, err
		}
		oldImageURL = book.ImageURL
		book.ImageURL = stored.URL
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Year = input.Year
	book.Genre = input.Genre

	if err := s.repo.Save(ctx, book); err != nil {
		if len(input.ImageData) > 0 {
			// The new cover never became reachable; clean it up.
			if relErr := s.assets.Release(ctx, book.ImageURL); relErr != nil {
				s.logger.ErrorContext(ctx, "failed to clean up cover after save error",
					slog.String("book_id", id),
					slog.String("error", relErr.Error()),
				)
			}
		}
		return nil, fmt.Errorf("save book: %w", err)
	}

	// The old cover is released only after the record points at the
	// new one. A failed release leaves an orphan file, never a book
	// with a dangling image reference.
	if oldImageURL != "" {
		if err := s.assets.Release(ctx, oldImageURL); err != nil {
			s.logger.ErrorContext(ctx, "failed to release replaced cover",
				slog.String("book_id", id),
				slog.String("image_url", oldImageURL),
				slog.String("error", err.Error()),
			)
		}
	}

	s.invalidateBestRated(ctx)

	if err := s.producer.PublishBookUpdated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book updated",
		slog.String("book_id", book.ID),
		slog.String("user_id", input.UserID),
		slog.Bool("cover_replaced", oldImageURL != ""),
	)

	return book, nil
}

// DeleteBook removes a book and its stored cover. Only the owner may
// delete. The cover is released before the record: if the release
// fails the record stays intact and the operation reports the failure,
// so a stored image is never orphaned by a half-finished delete.
func (s *CatalogService) DeleteBook(ctx context.Context, id, userID string) error {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if book.UserID != userID {
		return apperrors.Unauthorized("only the creator can delete this book")
	}

	if err := s.assets.Release(ctx, book.ImageURL); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateBestRated(ctx)

	if err := s.producer.PublishBookDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted",
		slog.String("book_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

// RateBook appends a rating for the book and returns it with the
// recomputed average. Each user rates a book once; grades are whole
// stars from 0 to 5 and are immutable once recorded.
func (s *CatalogService) RateBook(ctx context.Context, bookID, userID string, grade int) (*domain.Book, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if !domain.IsValidGrade(grade) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("grade must be between %d and %d", domain.MinGrade, domain.MaxGrade))
	}

	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.HasRatingFrom(userID) {
		return nil, apperrors.DuplicateRating(bookID, userID)
	}

	book.AddRating(userID, grade)

	if err := s.repo.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}

	s.invalidateBestRated(ctx)

	if err := s.producer.PublishBookRated(ctx, book, userID, grade); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.rated event",
			slog.String("book_id", bookID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book rated",
		slog.String("book_id", bookID),
		slog.String("user_id", userID),
		slog.Int("grade", grade),
		slog.Float64("average_rating", book.AverageRating),
	)

	return book, nil
}

// BestRatedBooks returns the top three books by average rating, ties
// going to the earlier insertion. Served from cache when possible.
func (s *CatalogService) BestRatedBooks(ctx context.Context) ([]domain.Book, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "best rated cache read failed",
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	books, err := s.repo.ListBestRated(ctx, BestRatedCount)
	if err != nil {
		return nil, fmt.Errorf("list best rated: %w", err)
	}

	if err := s.cache.Set(ctx, books); err != nil {
		s.logger.WarnContext(ctx, "best rated cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return books, nil
}

func (s *CatalogService) invalidateBestRated(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "best rated cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}

func validateBookFields(title, author string, year int, genre string) error {
	if title == "" {
		return apperrors.InvalidInput("title is required")
	}
	if author == "" {
		return apperrors.InvalidInput("author is required")
	}
	if year <= 0 {
		return apperrors.InvalidInput("year must be a positive number")
	}
	if genre == "" {
		return apperrors.InvalidInput("genre is required")
	}
	return nil
}

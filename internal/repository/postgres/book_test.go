package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/domain"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/database"
	apperrors "github.com/Riiturii/oc-monvieuxgrimoire/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func setupRepo(t *testing.T) (*BookRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewBookRepository(mock)
	return repo, mock
}

var bookRowColumns = []string{
	"id", "user_id", "title", "author", "year", "genre",
	"image_url", "ratings", "average_rating", "created_at", "updated_at",
}

func sampleBook() domain.Book {
	return domain.Book{
		ID:       "book-1",
		UserID:   "user-1",
		Title:    "Notre-Dame de Paris",
		Author:   "Victor Hugo",
		Year:     1831,
		Genre:    "Gothic fiction",
		ImageURL: "http://localhost:4000/images/book-1.jpg",
		Ratings: []domain.Rating{
			{UserID: "user-1", Grade: 4},
			{UserID: "user-2", Grade: 5},
		},
		AverageRating: 4.5,
		CreatedAt:     time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func mustMarshalJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func bookRow(t *testing.T, b domain.Book) *pgxmock.Rows {
	t.Helper()
	return pgxmock.NewRows(bookRowColumns).AddRow(
		b.ID, b.UserID, b.Title, b.Author, b.Year, b.Genre,
		b.ImageURL, mustMarshalJSON(t, b.Ratings), b.AverageRating,
		b.CreatedAt, b.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// GetByID
// ---------------------------------------------------------------------------

func TestBookRepository_GetByID_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectQuery("SELECT .+ FROM books WHERE id").
		WithArgs(b.ID).
		WillReturnRows(bookRow(t, b))

	result, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, result.ID)
	assert.Equal(t, b.UserID, result.UserID)
	assert.Equal(t, b.Title, result.Title)
	assert.Equal(t, b.Author, result.Author)
	assert.Equal(t, b.Year, result.Year)
	assert.Equal(t, b.Genre, result.Genre)
	assert.Equal(t, b.ImageURL, result.ImageURL)
	assert.Equal(t, b.Ratings, result.Ratings)
	assert.Equal(t, b.AverageRating, result.AverageRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM books WHERE id").
		WithArgs("nonexistent-id").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "nonexistent-id")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_GetByID_QueryError(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM books WHERE id").
		WithArgs("book-1").
		WillReturnError(errors.New("connection refused"))

	result, err := repo.GetByID(context.Background(), "book-1")
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "get book")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_GetByID_EmptyRatings(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	b := sampleBook()
	b.Ratings = nil
	b.AverageRating = 0

	mock.ExpectQuery("SELECT .+ FROM books WHERE id").
		WithArgs(b.ID).
		WillReturnRows(bookRow(t, b))

	result, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.NotNil(t, result.Ratings)
	assert.Empty(t, result.Ratings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestBookRepository_List_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	b1 := sampleBook()
	b2 := sampleBook()
	b2.ID = "book-2"
	b2.Title = "Les Misérables"

	rows := bookRow(t, b1).AddRow(
		b2.ID, b2.UserID, b2.Title, b2.Author, b2.Year, b2.Genre,
		b2.ImageURL, mustMarshalJSON(t, b2.Ratings), b2.AverageRating,
		b2.CreatedAt, b2.UpdatedAt,
	)

	mock.ExpectQuery("SELECT .+ FROM books ORDER BY seq ASC").
		WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "book-1", result[0].ID)
	assert.Equal(t, "book-2", result[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_List_Empty(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM books ORDER BY seq ASC").
		WillReturnRows(pgxmock.NewRows(bookRowColumns))

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestBookRepository_Save_Insert(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	b := sampleBook()
	ratingsJSON := mustMarshalJSON(t, b.Ratings)

	mock.ExpectExec("INSERT INTO books").
		WithArgs(
			b.ID, b.UserID, b.Title, b.Author, b.Year, b.Genre,
			b.ImageURL, ratingsJSON, b.AverageRating, b.CreatedAt,
			pgxmock.AnyArg(), // UpdatedAt is set to time.Now().UTC() inside Save
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Save(context.Background(), &b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Save_ExecError(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectExec("INSERT INTO books").
		WithArgs(
			b.ID, b.UserID, b.Title, b.Author, b.Year, b.Genre,
			b.ImageURL, mustMarshalJSON(t, b.Ratings), b.AverageRating,
			b.CreatedAt, pgxmock.AnyArg(),
		).
		WillReturnError(errors.New("connection reset"))

	err := repo.Save(context.Background(), &b)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "save book")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestBookRepository_Delete_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM books").
		WithArgs("book-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "book-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_Delete_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM books").
		WithArgs("nonexistent-id").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListBestRated
// ---------------------------------------------------------------------------

func TestBookRepository_ListBestRated_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	b := sampleBook()

	mock.ExpectQuery("SELECT .+ FROM books ORDER BY average_rating DESC, seq ASC").
		WithArgs(3).
		WillReturnRows(bookRow(t, b))

	result, err := repo.ListBestRated(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, b.ID, result[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_ListBestRated_QueryError(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM books ORDER BY average_rating DESC, seq ASC").
		WithArgs(3).
		WillReturnError(errors.New("connection refused"))

	result, err := repo.ListBestRated(context.Background(), 3)
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "list best rated books")
	assert.NoError(t, mock.ExpectationsWereMet())
}

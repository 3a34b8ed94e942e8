package domain

import (
	"math"
	"time"
)

// Grade bounds for a single rating.
const (
	MinGrade = 0
	MaxGrade = 5
)

// Rating is one user's grade for a book. A user rates a given book at
// most once, and a rating is never changed or removed afterwards.
type Rating struct {
	UserID string `json:"userId"`
	Grade  int    `json:"grade"`
}

// Book is a catalog entry together with its accumulated ratings. The
// ratings travel with the record; AverageRating is derived, persisted
// alongside the record, and recomputed on every rating mutation.
type Book struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Year          int       `json:"year"`
	Genre         string    `json:"genre"`
	ImageURL      string    `json:"imageUrl"`
	Ratings       []Rating  `json:"ratings"`
	AverageRating float64   `json:"averageRating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsValidGrade reports whether g is an allowed whole-star grade.
func IsValidGrade(g int) bool {
	return g >= MinGrade && g <= MaxGrade
}

// HasRatingFrom reports whether userID already rated the book.
func (b *Book) HasRatingFrom(userID string) bool {
	for _, r := range b.Ratings {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddRating appends a rating and recomputes the stored average. Callers
// must check HasRatingFrom first; AddRating does not enforce uniqueness.
func (b *Book) AddRating(userID string, grade int) {
	b.Ratings = append(b.Ratings, Rating{UserID: userID, Grade: grade})
	b.AverageRating = ComputeAverage(b.Ratings)
}

// ComputeAverage returns the mean grade rounded half away from zero to
// one decimal place. An empty slice yields 0.
func ComputeAverage(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Grade
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10
}

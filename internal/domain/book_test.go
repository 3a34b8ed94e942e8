package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Grade Validation Tests
// ============================================================================

func TestIsValidGrade_Bounds(t *testing.T) {
	assert.True(t, IsValidGrade(0))
	assert.True(t, IsValidGrade(5))
	assert.True(t, IsValidGrade(3))
}

func TestIsValidGrade_OutOfRange(t *testing.T) {
	assert.False(t, IsValidGrade(-1))
	assert.False(t, IsValidGrade(6))
	assert.False(t, IsValidGrade(100))
}

// ============================================================================
// Average Computation Tests
// ============================================================================

func TestComputeAverage_Empty(t *testing.T) {
	assert.Equal(t, 0.0, ComputeAverage(nil))
	assert.Equal(t, 0.0, ComputeAverage([]Rating{}))
}

func TestComputeAverage_SingleRating(t *testing.T) {
	avg := ComputeAverage([]Rating{{UserID: "u1", Grade: 4}})
	assert.Equal(t, 4.0, avg)
}

func TestComputeAverage_RoundsToOneDecimal(t *testing.T) {
	// (5 + 4 + 4) / 3 = 4.333... -> 4.3
	avg := ComputeAverage([]Rating{
		{UserID: "u1", Grade: 5},
		{UserID: "u2", Grade: 4},
		{UserID: "u3", Grade: 4},
	})
	assert.Equal(t, 4.3, avg)
}

func TestComputeAverage_RoundsHalfUp(t *testing.T) {
	// (4 + 5) / 2 = 4.5 -> stays 4.5; (1+2+2+2) / 4 = 1.75 -> 1.8
	avg := ComputeAverage([]Rating{
		{UserID: "u1", Grade: 1},
		{UserID: "u2", Grade: 2},
		{UserID: "u3", Grade: 2},
		{UserID: "u4", Grade: 2},
	})
	assert.Equal(t, 1.8, avg)
}

func TestComputeAverage_AllZero(t *testing.T) {
	avg := ComputeAverage([]Rating{
		{UserID: "u1", Grade: 0},
		{UserID: "u2", Grade: 0},
	})
	assert.Equal(t, 0.0, avg)
}

// ============================================================================
// Rating Mutation Tests
// ============================================================================

func TestHasRatingFrom(t *testing.T) {
	b := &Book{Ratings: []Rating{{UserID: "u1", Grade: 3}}}
	assert.True(t, b.HasRatingFrom("u1"))
	assert.False(t, b.HasRatingFrom("u2"))
}

func TestHasRatingFrom_NoRatings(t *testing.T) {
	b := &Book{}
	assert.False(t, b.HasRatingFrom("u1"))
}

func TestAddRating_AppendsAndRecomputes(t *testing.T) {
	b := &Book{Ratings: []Rating{{UserID: "u1", Grade: 5}}, AverageRating: 5}

	b.AddRating("u2", 2)

	assert.Len(t, b.Ratings, 2)
	assert.Equal(t, Rating{UserID: "u2", Grade: 2}, b.Ratings[1])
	assert.Equal(t, 3.5, b.AverageRating)
}

func TestAddRating_PreservesInsertionOrder(t *testing.T) {
	b := &Book{}
	b.AddRating("u1", 1)
	b.AddRating("u2", 2)
	b.AddRating("u3", 3)

	assert.Equal(t, "u1", b.Ratings[0].UserID)
	assert.Equal(t, "u2", b.Ratings[1].UserID)
	assert.Equal(t, "u3", b.Ratings[2].UserID)
	assert.Equal(t, 2.0, b.AverageRating)
}

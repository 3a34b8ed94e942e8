package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratedData struct {
	BookID string `json:"book_id"`
	UserID string `json:"user_id"`
	Grade  int    `json:"grade"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	data := ratedData{BookID: "b-1", UserID: "u-1", Grade: 4}

	event, err := NewEvent("book.rated", "b-1", "book", "catalog-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "book.rated", event.EventType)
	assert.Equal(t, "b-1", event.AggregateID)
	assert.Equal(t, "book", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "catalog-service", event.Source)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("book.created", "b-2", "book", "catalog-service",
		ratedData{BookID: "b-2", UserID: "u-2", Grade: 5})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-9", decoded.CorrelationID)

	var data ratedData
	require.NoError(t, decoded.UnmarshalData(&data))
	assert.Equal(t, 5, data.Grade)
}

package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklend/rental-service/internal/events"
)

func Test_BuildBookRented(t *testing.T) {
	occurredAt := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	due := occurredAt.AddDate(0, 0, 14)

	event, err := events.BuildBookRented(events.BookRentedPayload{
		UserID:    42,
		BookID:    7,
		BookTitle: "The Go Programming Language",
		DueDate:   due,
	}, occurredAt)

	require.NoError(t, err)
	assert.Equal(t, events.BookRentedEventType, event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.NotEqual(t, uuid.Nil, event.ID)

	var payload events.BookRentedPayload
	require.NoError(t, jsoniter.Unmarshal(event.PayloadJSON, &payload))
	assert.Equal(t, int64(42), payload.UserID)
	assert.Equal(t, "The Go Programming Language", payload.BookTitle)
}

func Test_EveryEventGetsAFreshID(t *testing.T) {
	first, err := events.BuildBookReturned(events.BookReturnedPayload{UserID: 42, BookID: 7}, time.Now())
	require.NoError(t, err)

	second, err := events.BuildBookReturned(events.BookReturnedPayload{UserID: 42, BookID: 7}, time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func Test_NopPublisher_AcceptsEverything(t *testing.T) {
	event, err := events.BuildOverdueDetected(events.OverdueDetectedPayload{RentalID: 1, BookID: 7}, time.Now())
	require.NoError(t, err)

	assert.NoError(t, events.NopPublisher{}.Publish(context.Background(), event))
}

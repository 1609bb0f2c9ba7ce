// Package events defines the rental-event envelope emitted after successful
// rent/return operations and overdue detection. The transport is a pluggable
// Publisher; the default is a no-op hook.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

const (
	BookRentedEventType      = "BookRented"
	BookReturnedEventType    = "BookReturned"
	OverdueDetectedEventType = "OverdueDetected"
)

// RentalEvent is the serialized envelope handed to the Publisher.
type RentalEvent struct {
	ID          uuid.UUID
	EventType   string
	OccurredAt  time.Time
	PayloadJSON []byte
}

// BookRentedPayload is the payload of a BookRented event.
type BookRentedPayload struct {
	UserID    int64     `json:"userId"`
	BookID    int64     `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	DueDate   time.Time `json:"dueDate"`
}

// BookReturnedPayload is the payload of a BookReturned event.
type BookReturnedPayload struct {
	UserID int64 `json:"userId"`
	BookID int64 `json:"bookId"`
}

// OverdueDetectedPayload is the payload of an OverdueDetected event.
type OverdueDetectedPayload struct {
	RentalID int64     `json:"rentalId"`
	BookID   int64     `json:"bookId"`
	DueDate  time.Time `json:"dueDate"`
}

// BuildBookRented builds the event emitted after a successful rent.
func BuildBookRented(payload BookRentedPayload, occurredAt time.Time) (RentalEvent, error) {
	return build(BookRentedEventType, payload, occurredAt)
}

// BuildBookReturned builds the event emitted after a successful return.
func BuildBookReturned(payload BookReturnedPayload, occurredAt time.Time) (RentalEvent, error) {
	return build(BookReturnedEventType, payload, occurredAt)
}

// BuildOverdueDetected builds the event emitted when the overdue-detection
// job records a new overdue item.
func BuildOverdueDetected(payload OverdueDetectedPayload, occurredAt time.Time) (RentalEvent, error) {
	return build(OverdueDetectedEventType, payload, occurredAt)
}

func build(eventType string, payload any, occurredAt time.Time) (RentalEvent, error) {
	payloadJSON, marshalErr := jsoniter.ConfigFastest.Marshal(payload)
	if marshalErr != nil {
		return RentalEvent{}, marshalErr
	}

	return RentalEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		OccurredAt:  occurredAt,
		PayloadJSON: payloadJSON,
	}, nil
}

// Publisher is the outbound notification hook. Publishing is best-effort:
// callers log failures and never fail the triggering operation.
type Publisher interface {
	Publish(ctx context.Context, event RentalEvent) error
}

// NopPublisher discards all events. It is the default transport until a
// real broker is wired in.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(_ context.Context, _ RentalEvent) error {
	return nil
}

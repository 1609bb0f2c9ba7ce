// Package service orchestrates the rental use cases on top of the
// repositories, the book-catalog client and the event publisher. All
// invariants live in the domain aggregate; this layer only loads, calls
// and persists.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/booklend/rental-service/internal/client"
	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/events"
	"github.com/booklend/rental-service/internal/store"
)

// ErrRentalNotFound is returned by the rent/return use cases when the user
// has no rental account.
var ErrRentalNotFound = errors.New("rental not found for user")

const (
	logMsgPublishFailed = "failed to publish rental event, continuing"
	logMsgBookRented    = "book rented"
	logMsgBookReturned  = "book returned"
	logAttrError        = "error"
	logAttrUserID       = "user_id"
	logAttrBookID       = "book_id"
)

// RentalStore is the persistence surface the service consumes.
type RentalStore interface {
	Save(ctx context.Context, rental *domain.Rental) error
	FindByID(ctx context.Context, id int64) (*domain.Rental, error)
	FindByUserID(ctx context.Context, userID int64) (*domain.Rental, error)
	FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.Rental, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// RentalService exposes the rental use cases consumed by the transport layer.
type RentalService interface {
	Save(ctx context.Context, rental *domain.Rental) error
	Update(ctx context.Context, rental *domain.Rental) error
	PartialUpdate(ctx context.Context, patch RentalPatch) (*domain.Rental, error)
	FindAll(ctx context.Context, pageable *store.Pageable) ([]domain.Rental, error)
	CountAll(ctx context.Context) (int64, error)
	FindOne(ctx context.Context, id int64) (*domain.Rental, error)
	Delete(ctx context.Context, id int64) error
	RentBook(ctx context.Context, userID int64, bookID int64) (*domain.Rental, error)
	ReturnBook(ctx context.Context, userID int64, bookID int64) (*domain.Rental, error)
}

// RentalPatch carries the fields of a partial update; nil fields are left
// untouched. Partial update is read-mutate-write, there is no partial-field
// primitive at the repository level.
type RentalPatch struct {
	ID           int64
	UserID       *int64
	RentalStatus *domain.RentalStatus
	LateFee      *int64
}

type rentalService struct {
	rentals   RentalStore
	books     client.BookCatalog
	publisher events.Publisher
	logger    store.Logger
}

// NewRentalService wires the rental use cases.
func NewRentalService(rentals RentalStore, books client.BookCatalog, publisher events.Publisher, logger store.Logger) RentalService {
	return &rentalService{
		rentals:   rentals,
		books:     books,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *rentalService) Save(ctx context.Context, rental *domain.Rental) error {
	return s.rentals.Save(ctx, rental)
}

func (s *rentalService) Update(ctx context.Context, rental *domain.Rental) error {
	return s.rentals.Save(ctx, rental)
}

func (s *rentalService) PartialUpdate(ctx context.Context, patch RentalPatch) (*domain.Rental, error) {
	rental, err := s.rentals.FindByID(ctx, patch.ID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, nil
	}

	if patch.UserID != nil {
		rental.UserID = *patch.UserID
	}
	if patch.RentalStatus != nil {
		rental.RentalStatus = *patch.RentalStatus
	}
	if patch.LateFee != nil {
		rental.LateFee = *patch.LateFee
	}

	if err := s.rentals.Save(ctx, rental); err != nil {
		return nil, err
	}

	return rental, nil
}

func (s *rentalService) FindAll(ctx context.Context, pageable *store.Pageable) ([]domain.Rental, error) {
	return s.rentals.FindAllBy(ctx, pageable)
}

func (s *rentalService) CountAll(ctx context.Context) (int64, error) {
	return s.rentals.Count(ctx)
}

func (s *rentalService) FindOne(ctx context.Context, id int64) (*domain.Rental, error) {
	return s.rentals.FindByID(ctx, id)
}

func (s *rentalService) Delete(ctx context.Context, id int64) error {
	return s.rentals.DeleteByID(ctx, id)
}

// RentBook loads the user's rental, resolves the book title from the
// catalog, lets the aggregate perform the rent transition, persists, and
// emits a BookRented event (best-effort).
func (s *rentalService) RentBook(ctx context.Context, userID int64, bookID int64) (*domain.Rental, error) {
	rental, err := s.rentals.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, ErrRentalNotFound
	}

	info, err := s.books.GetBookInfo(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := rental.RentBook(info.ID, info.Title); err != nil {
		return nil, err
	}

	if err := s.rentals.Save(ctx, rental); err != nil {
		return nil, err
	}

	rented := rental.RentedItems[len(rental.RentedItems)-1]
	s.publish(ctx, func() (events.RentalEvent, error) {
		return events.BuildBookRented(events.BookRentedPayload{
			UserID:    userID,
			BookID:    bookID,
			BookTitle: rented.BookTitle,
			DueDate:   rented.DueDate,
		}, time.Now())
	})

	if s.logger != nil {
		s.logger.Info(logMsgBookRented, logAttrUserID, userID, logAttrBookID, bookID)
	}

	return rental, nil
}

// ReturnBook loads the user's rental, lets the aggregate perform the return
// transition, persists, and emits a BookReturned event (best-effort).
func (s *rentalService) ReturnBook(ctx context.Context, userID int64, bookID int64) (*domain.Rental, error) {
	rental, err := s.rentals.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, ErrRentalNotFound
	}

	if err := rental.ReturnBook(bookID); err != nil {
		return nil, err
	}

	if err := s.rentals.Save(ctx, rental); err != nil {
		return nil, err
	}

	s.publish(ctx, func() (events.RentalEvent, error) {
		return events.BuildBookReturned(events.BookReturnedPayload{
			UserID: userID,
			BookID: bookID,
		}, time.Now())
	})

	if s.logger != nil {
		s.logger.Info(logMsgBookReturned, logAttrUserID, userID, logAttrBookID, bookID)
	}

	return rental, nil
}

// publish emits an event best-effort: build or transport failures are
// logged and never fail the triggering operation.
func (s *rentalService) publish(ctx context.Context, buildFn func() (events.RentalEvent, error)) {
	event, buildErr := buildFn()
	if buildErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgPublishFailed, logAttrError, buildErr.Error())
		}
		return
	}

	if publishErr := s.publisher.Publish(ctx, event); publishErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgPublishFailed, logAttrError, publishErr.Error())
		}
	}
}

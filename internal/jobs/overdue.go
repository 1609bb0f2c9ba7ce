// Package jobs holds the background work of the service: the overdue
// detection sweep and the cron scheduler that drives it.
package jobs

import (
	"context"
	"time"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/events"
	"github.com/booklend/rental-service/internal/store"
)

const (
	logMsgSweepStarted   = "overdue sweep started"
	logMsgSweepFinished  = "overdue sweep finished"
	logMsgSweepFailed    = "overdue sweep failed"
	logMsgItemSkipped    = "overdue item already recorded, skipping"
	logMsgItemFailed     = "failed to record overdue item, continuing"
	logMsgPublishFailed  = "failed to publish overdue event, continuing"
	logMsgRecoveredPanic = "recovered from panic in background job"
	logAttrError         = "error"
	logAttrRentalID      = "rental_id"
	logAttrBookID        = "book_id"
	logAttrDetected      = "detected"
	logAttrScanned       = "scanned"
	logAttrDurationMS    = "duration_ms"
	logAttrPanicValue    = "panic"
)

// RentedItemFinder lists rented items whose due date has passed.
type RentedItemFinder interface {
	FindAllDueBefore(ctx context.Context, cutoff time.Time) ([]domain.RentedItem, error)
}

// OverdueRecorder persists overdue records idempotently.
type OverdueRecorder interface {
	ExistsFor(ctx context.Context, rentalID int64, bookID int64) (bool, error)
	Save(ctx context.Context, item *domain.OverdueItem) error
}

// RentalFlagger loads and persists the rentals touched by the sweep.
type RentalFlagger interface {
	FindByID(ctx context.Context, id int64) (*domain.Rental, error)
	Save(ctx context.Context, rental *domain.Rental) error
}

// OverdueDetector sweeps the rented items and records overdue state.
type OverdueDetector struct {
	rentedItems RentedItemFinder
	overdue     OverdueRecorder
	rentals     RentalFlagger
	publisher   events.Publisher
	logger      store.Logger
	lateFee     int64
	clock       func() time.Time
}

// NewOverdueDetector wires the overdue sweep. lateFee is the fee accrued on
// the owning rental per newly detected overdue item.
func NewOverdueDetector(
	rentedItems RentedItemFinder,
	overdue OverdueRecorder,
	rentals RentalFlagger,
	publisher events.Publisher,
	logger store.Logger,
	lateFee int64,
) *OverdueDetector {
	return &OverdueDetector{
		rentedItems: rentedItems,
		overdue:     overdue,
		rentals:     rentals,
		publisher:   publisher,
		logger:      logger,
		lateFee:     lateFee,
		clock:       time.Now,
	}
}

// Run performs one overdue sweep: every rented item past its due date gets
// an overdue record, its owning rental is flagged unavailable and accrues
// the late fee, and an OverdueDetected event is emitted. Already recorded
// items are skipped so the sweep can run on any schedule. Per-item failures
// are logged and do not abort the sweep.
func (d *OverdueDetector) Run(ctx context.Context) error {
	start := d.clock()
	d.logger.Info(logMsgSweepStarted)

	items, err := d.rentedItems.FindAllDueBefore(ctx, start)
	if err != nil {
		d.logger.Error(logMsgSweepFailed, logAttrError, err.Error())
		return err
	}

	detected := 0
	for _, item := range items {
		if item.RentalID == nil {
			continue
		}

		recorded, itemErr := d.detect(ctx, item)
		if itemErr != nil {
			d.logger.Warn(logMsgItemFailed,
				logAttrRentalID, *item.RentalID,
				logAttrBookID, item.BookID,
				logAttrError, itemErr.Error())
			continue
		}
		if recorded {
			detected++
		}
	}

	d.logger.Info(logMsgSweepFinished,
		logAttrScanned, len(items),
		logAttrDetected, detected,
		logAttrDurationMS, d.clock().Sub(start).Milliseconds())

	return nil
}

func (d *OverdueDetector) detect(ctx context.Context, item domain.RentedItem) (bool, error) {
	rentalID := *item.RentalID

	exists, err := d.overdue.ExistsFor(ctx, rentalID, item.BookID)
	if err != nil {
		return false, err
	}
	if exists {
		d.logger.Debug(logMsgItemSkipped, logAttrRentalID, rentalID, logAttrBookID, item.BookID)
		return false, nil
	}

	overdueItem := domain.NewOverdueItem(item, rentalID)
	if err := d.overdue.Save(ctx, overdueItem); err != nil {
		return false, err
	}

	if err := d.flagRental(ctx, rentalID); err != nil {
		return false, err
	}

	d.publish(ctx, rentalID, item)

	return true, nil
}

func (d *OverdueDetector) flagRental(ctx context.Context, rentalID int64) error {
	rental, err := d.rentals.FindByID(ctx, rentalID)
	if err != nil {
		return err
	}
	if rental == nil {
		return nil
	}

	rental.RentalStatus = domain.RentUnavailable
	rental.LateFee += d.lateFee

	return d.rentals.Save(ctx, rental)
}

func (d *OverdueDetector) publish(ctx context.Context, rentalID int64, item domain.RentedItem) {
	event, buildErr := events.BuildOverdueDetected(events.OverdueDetectedPayload{
		RentalID: rentalID,
		BookID:   item.BookID,
		DueDate:  item.DueDate,
	}, d.clock())
	if buildErr != nil {
		d.logger.Warn(logMsgPublishFailed, logAttrError, buildErr.Error())
		return
	}

	if publishErr := d.publisher.Publish(ctx, event); publishErr != nil {
		d.logger.Warn(logMsgPublishFailed, logAttrError, publishErr.Error())
	}
}

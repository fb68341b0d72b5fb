// Package booking turns booking requests into rentals.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"rentals/entity"
	"rentals/metrics"
)

const secondsPerDay = 24 * 60 * 60

type VehicleCatalog interface {
	// FindAndReserve must switch the vehicle from AVAILABLE to RENTED atomically
	// and return entity.ErrVehicleUnavailable when no available vehicle matches.
	FindAndReserve(ctx context.Context, vehicleID string) (entity.Vehicle, error)
	Release(ctx context.Context, vehicleID string) error
}

type RentalLedger interface {
	Append(ctx context.Context, rental entity.Rental) error
}

type EventLogger interface {
	Emit(ctx context.Context, eventType string, details map[string]any)
}

type Notifier interface {
	Broadcast(ctx context.Context, message string) int
}

type Engine struct {
	catalog  VehicleCatalog
	ledger   RentalLedger
	events   EventLogger
	notifier Notifier
}

func NewEngine(
	catalog VehicleCatalog,
	ledger RentalLedger,
	events EventLogger,
	notifier Notifier,
) *Engine {
	if catalog == nil {
		panic("missing catalog")
	}
	if ledger == nil {
		panic("missing ledger")
	}
	if events == nil {
		panic("missing events")
	}
	if notifier == nil {
		panic("missing notifier")
	}

	return &Engine{
		catalog:  catalog,
		ledger:   ledger,
		events:   events,
		notifier: notifier,
	}
}

// Book reserves the vehicle for the requested period and records the rental.
//
// The rental period is validated before anything is reserved. Once the
// reservation succeeded, only a ledger failure can fail the booking, in which
// case the reservation is released again. Audit and notification delivery are
// best-effort.
func (e *Engine) Book(ctx context.Context, authCtx entity.AuthContext, req entity.BookingRequest) (result entity.BookingResult, err error) {
	defer func() {
		metrics.BookingsTotal.WithLabelValues(resultLabel(err)).Inc()
	}()

	if !authCtx.CanActFor(req.CustomerID) {
		return entity.BookingResult{}, fmt.Errorf("user %q cannot book for customer %q: %w", authCtx.UserID, req.CustomerID, entity.ErrForbidden)
	}

	start, end, days, err := rentalPeriod(req.RentalStartDate, req.RentalEndDate)
	if err != nil {
		return entity.BookingResult{}, err
	}

	vehicle, err := e.catalog.FindAndReserve(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, entity.ErrVehicleUnavailable) {
			return entity.BookingResult{}, err
		}
		return entity.BookingResult{}, fmt.Errorf("could not reserve vehicle: %w", err)
	}

	rental := entity.Rental{
		RentalID:        uuid.NewString(),
		VehicleID:       vehicle.VehicleID,
		CustomerID:      req.CustomerID,
		RentalStartDate: start,
		RentalEndDate:   end,
		TotalCost:       vehicle.RentalPricePerDay.Mul(decimal.NewFromInt(days)),
	}

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"vehicle_id":  vehicle.VehicleID,
		"customer_id": req.CustomerID,
		"rental_id":   rental.RentalID,
	})

	if err := e.ledger.Append(ctx, rental); err != nil {
		return entity.BookingResult{}, e.compensate(ctx, logger, vehicle.VehicleID, err)
	}

	logger.WithField("total_cost", rental.TotalCost.String()).Info("Vehicle booked")

	e.events.Emit(ctx, entity.AuditVehicleBooked, map[string]any{
		"vehicle_id": vehicle.VehicleID,
		"total_cost": rental.TotalCost,
	})

	e.notifier.Broadcast(
		context.WithoutCancel(ctx),
		fmt.Sprintf("Vehicle %s %s has been booked.", vehicle.Make, vehicle.Model),
	)

	return entity.BookingResult{
		RentalID:  rental.RentalID,
		TotalCost: rental.TotalCost,
	}, nil
}

func (e *Engine) compensate(ctx context.Context, logger *logrus.Entry, vehicleID string, appendErr error) error {
	appendErr = fmt.Errorf("could not append rental: %w", appendErr)

	// the release has to happen even if the caller already went away
	if err := e.catalog.Release(context.WithoutCancel(ctx), vehicleID); err != nil {
		logger.WithError(err).Error("Could not release vehicle after failed ledger write, vehicle stays RENTED")
		return errors.Join(appendErr, fmt.Errorf("could not release vehicle %s: %w", vehicleID, err))
	}

	logger.WithError(appendErr).Warn("Ledger write failed, vehicle released")
	return appendErr
}

// rentalPeriod parses both dates and returns the number of whole days between them.
func rentalPeriod(startDate, endDate string) (time.Time, time.Time, int64, error) {
	start, err := time.Parse(entity.RentalDateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("rental start date %q: %w", startDate, entity.ErrMalformedDate)
	}

	end, err := time.Parse(entity.RentalDateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("rental end date %q: %w", endDate, entity.ErrMalformedDate)
	}

	// both dates are UTC midnight; time.Duration would overflow past ~292 years
	days := (end.Unix() - start.Unix()) / secondsPerDay
	if days <= 0 {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("%s to %s: %w", startDate, endDate, entity.ErrInvalidRentalPeriod)
	}

	return start, end, days, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, entity.ErrVehicleUnavailable):
		return "unavailable"
	case errors.Is(err, entity.ErrInvalidRentalPeriod):
		return "invalid_period"
	case errors.Is(err, entity.ErrMalformedDate):
		return "malformed_date"
	case errors.Is(err, entity.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

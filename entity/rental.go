package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalDateLayout is the calendar format accepted for rental periods.
const RentalDateLayout = "2006-01-02"

type BookingRequest struct {
	VehicleID       string `json:"vehicle_id" validate:"required"`
	CustomerID      string `json:"customer_id" validate:"required"`
	RentalStartDate string `json:"rental_start_date" validate:"required"`
	RentalEndDate   string `json:"rental_end_date" validate:"required"`
}

type BookingResult struct {
	RentalID  string          `json:"rental_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// Rental is a ledger entry. It is written once per successful booking and never updated.
type Rental struct {
	RentalID        string          `json:"rental_id" db:"rental_id"`
	VehicleID       string          `json:"vehicle_id" db:"vehicle_id"`
	CustomerID      string          `json:"customer_id" db:"customer_id"`
	RentalStartDate time.Time       `json:"rental_start_date" db:"rental_start_date"`
	RentalEndDate   time.Time       `json:"rental_end_date" db:"rental_end_date"`
	TotalCost       decimal.Decimal `json:"total_cost" db:"total_cost"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type RentalFilter struct {
	CustomerID string
	VehicleID  string
}

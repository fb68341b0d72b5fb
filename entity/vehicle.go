package entity

import "github.com/shopspring/decimal"

type AvailabilityStatus string

const (
	VehicleAvailable AvailabilityStatus = "AVAILABLE"
	VehicleRented    AvailabilityStatus = "RENTED"
)

func (s AvailabilityStatus) Valid() bool {
	return s == VehicleAvailable || s == VehicleRented
}

type Vehicle struct {
	VehicleID          string             `json:"vehicle_id" db:"vehicle_id"`
	Make               string             `json:"make" db:"make"`
	Model              string             `json:"model" db:"model"`
	Type               string             `json:"type" db:"type"`
	RentalPricePerDay  decimal.Decimal    `json:"rental_price_per_day" db:"rental_price_per_day"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status" db:"availability_status"`
	Location           string             `json:"location" db:"location"`
}

// VehicleFilter narrows catalog queries. Zero-valued fields are ignored.
type VehicleFilter struct {
	Type     string
	Location string
	MaxPrice *decimal.Decimal
	Status   AvailabilityStatus
}

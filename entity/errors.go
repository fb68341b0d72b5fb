package entity

import "errors"

var (
	ErrVehicleUnavailable  = errors.New("vehicle is not available for booking")
	ErrInvalidRentalPeriod = errors.New("invalid rental period")
	ErrMalformedDate       = errors.New("malformed date")

	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

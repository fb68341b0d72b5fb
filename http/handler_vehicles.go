package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"rentals/entity"
)

type postVehicleRequest struct {
	Make               string                    `json:"make" validate:"required"`
	Model              string                    `json:"model" validate:"required"`
	Type               string                    `json:"type" validate:"required"`
	RentalPricePerDay  decimal.Decimal           `json:"rental_price_per_day"`
	AvailabilityStatus entity.AvailabilityStatus `json:"availability_status"`
	Location           string                    `json:"location" validate:"required"`
}

type postVehicleResponse struct {
	Message   string `json:"message"`
	VehicleID string `json:"vehicle_id"`
}

type getVehiclesResponse struct {
	Vehicles []entity.Vehicle `json:"vehicles"`
}

type getBrowseResponse struct {
	AvailableVehicles []entity.Vehicle `json:"available_vehicles"`
}

func (s *Server) PostVehicles(c echo.Context) error {
	authCtx := authContext(c)
	if !authCtx.IsEmployee() {
		return forbidden(authCtx)
	}

	var request postVehicleRequest
	if err := bindAndValidate(c, &request); err != nil {
		return err
	}

	if request.RentalPricePerDay.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "rental_price_per_day must not be negative")
	}

	status := request.AvailabilityStatus
	if status == "" {
		status = entity.VehicleAvailable
	}
	if !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown availability_status %q", status))
	}

	ctx := c.Request().Context()

	exists, err := s.vehiclesRepo.Exists(ctx, request.Make, request.Model, request.Type, request.Location)
	if err != nil {
		return fmt.Errorf("could not check vehicle: %w", err)
	}
	if exists {
		return echo.NewHTTPError(http.StatusBadRequest, "Vehicle already exists")
	}

	vehicle := entity.Vehicle{
		VehicleID:          uuid.NewString(),
		Make:               request.Make,
		Model:              request.Model,
		Type:               request.Type,
		RentalPricePerDay:  request.RentalPricePerDay,
		AvailabilityStatus: status,
		Location:           request.Location,
	}

	err = s.vehiclesRepo.Insert(ctx, vehicle)
	if errors.Is(err, entity.ErrConflict) {
		return echo.NewHTTPError(http.StatusBadRequest, "Vehicle already exists")
	}
	if err != nil {
		return fmt.Errorf("could not insert vehicle: %w", err)
	}

	s.events.Emit(ctx, entity.AuditVehicleAdded, map[string]any{
		"vehicle_id": vehicle.VehicleID,
		"make":       vehicle.Make,
		"model":      vehicle.Model,
		"location":   vehicle.Location,
	})

	return c.JSON(http.StatusOK, postVehicleResponse{
		Message:   "Vehicle added successfully",
		VehicleID: vehicle.VehicleID,
	})
}

func (s *Server) GetVehicles(c echo.Context) error {
	vehicles, err := s.vehiclesRepo.Find(c.Request().Context(), entity.VehicleFilter{})
	if err != nil {
		return fmt.Errorf("could not find vehicles: %w", err)
	}

	return c.JSON(http.StatusOK, getVehiclesResponse{
		Vehicles: nonNil(vehicles),
	})
}

func (s *Server) GetBrowse(c echo.Context) error {
	filter := entity.VehicleFilter{
		Type:     c.QueryParam("vehicle_type"),
		Location: c.QueryParam("location"),
		Status:   entity.VehicleAvailable,
	}

	if maxPrice := c.QueryParam("max_price"); maxPrice != "" {
		price, err := decimal.NewFromString(maxPrice)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid max_price %q", maxPrice))
		}
		filter.MaxPrice = &price
	}

	vehicles, err := s.vehiclesRepo.Find(c.Request().Context(), filter)
	if err != nil {
		return fmt.Errorf("could not browse vehicles: %w", err)
	}

	return c.JSON(http.StatusOK, getBrowseResponse{
		AvailableVehicles: nonNil(vehicles),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

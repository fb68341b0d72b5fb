package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"rentals/entity"
)

type rentalResponse struct {
	RentalID        string          `json:"rental_id"`
	VehicleID       string          `json:"vehicle_id"`
	CustomerID      string          `json:"customer_id"`
	RentalStartDate string          `json:"rental_start_date"`
	RentalEndDate   string          `json:"rental_end_date"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

type getRentalHistoryResponse struct {
	RentalHistory []rentalResponse `json:"rental_history"`
}

type getAllRentalsResponse struct {
	AllRentals []rentalResponse `json:"all_rentals"`
}

func (s *Server) GetRentalHistory(c echo.Context) error {
	customerID := c.Param("customer_id")

	authCtx := authContext(c)
	if !authCtx.CanActFor(customerID) {
		return forbidden(authCtx)
	}

	rentals, err := s.rentalsRepo.Find(c.Request().Context(), entity.RentalFilter{CustomerID: customerID})
	if err != nil {
		return fmt.Errorf("could not find rentals of customer %s: %w", customerID, err)
	}

	return c.JSON(http.StatusOK, getRentalHistoryResponse{
		RentalHistory: rentalsResponse(rentals),
	})
}

func (s *Server) GetAllRentals(c echo.Context) error {
	authCtx := authContext(c)
	if !authCtx.IsEmployee() {
		return forbidden(authCtx)
	}

	rentals, err := s.rentalsRepo.Find(c.Request().Context(), entity.RentalFilter{})
	if err != nil {
		return fmt.Errorf("could not find rentals: %w", err)
	}

	return c.JSON(http.StatusOK, getAllRentalsResponse{
		AllRentals: rentalsResponse(rentals),
	})
}

func rentalsResponse(rentals []entity.Rental) []rentalResponse {
	return lo.Map(rentals, func(r entity.Rental, _ int) rentalResponse {
		return rentalResponse{
			RentalID:        r.RentalID,
			VehicleID:       r.VehicleID,
			CustomerID:      r.CustomerID,
			RentalStartDate: r.RentalStartDate.Format(entity.RentalDateLayout),
			RentalEndDate:   r.RentalEndDate.Format(entity.RentalDateLayout),
			TotalCost:       r.TotalCost,
		}
	})
}

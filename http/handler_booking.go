package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"rentals/entity"
)

type postBookResponse struct {
	Message   string          `json:"message"`
	RentalID  string          `json:"rental_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func (s *Server) PostBook(c echo.Context) error {
	var request entity.BookingRequest
	if err := bindAndValidate(c, &request); err != nil {
		return err
	}

	authCtx := authContext(c)

	result, err := s.booker.Book(c.Request().Context(), authCtx, request)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrForbidden):
		return forbidden(authCtx)
	case errors.Is(err, entity.ErrVehicleUnavailable):
		return echo.NewHTTPError(http.StatusBadRequest, "Vehicle is not available for booking")
	case errors.Is(err, entity.ErrInvalidRentalPeriod):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid rental period")
	case errors.Is(err, entity.ErrMalformedDate):
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed rental date, expected YYYY-MM-DD")
	default:
		return fmt.Errorf("could not book vehicle: %w", err)
	}

	return c.JSON(http.StatusOK, postBookResponse{
		Message:   "Vehicle booked successfully",
		RentalID:  result.RentalID,
		TotalCost: result.TotalCost,
	})
}

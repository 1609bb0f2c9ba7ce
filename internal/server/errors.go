package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps domain and service errors onto HTTP statuses. Business
// rule violations are client errors; everything unrecognized is a 500.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrRentalNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrRentalUnavailable):
		return c.JSON(http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrBookNotRented):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

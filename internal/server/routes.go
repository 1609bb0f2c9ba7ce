// Package server wires the HTTP transport: echo routing, request
// validation, DTO mapping and error translation.
package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/booklend/rental-service/internal/health"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Rentals       *RentalController
	RentedItems   *RentedItemController
	ReturnedItems *ReturnedItemController
	OverdueItems  *OverdueItemController
	Health        *health.State
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// New builds the echo instance with all routes registered.
func New(ctls Controllers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())

	api := e.Group("/api")

	api.POST("/rentals", ctls.Rentals.Create)
	api.GET("/rentals", ctls.Rentals.List)
	api.GET("/rentals/count", ctls.Rentals.Count)
	api.GET("/rentals/:id", ctls.Rentals.Get)
	api.PUT("/rentals/:id", ctls.Rentals.Update)
	api.PATCH("/rentals/:id", ctls.Rentals.Patch)
	api.DELETE("/rentals/:id", ctls.Rentals.Delete)
	api.POST("/rentals/:userId/rented-items/:bookId", ctls.Rentals.RentBook)
	api.DELETE("/rentals/:userId/rented-items/:bookId", ctls.Rentals.ReturnBook)

	api.GET("/rented-items", ctls.RentedItems.List)
	api.GET("/rented-items/count", ctls.RentedItems.Count)
	api.GET("/rented-items/:id", ctls.RentedItems.Get)
	api.DELETE("/rented-items/:id", ctls.RentedItems.Delete)

	api.GET("/returned-items", ctls.ReturnedItems.List)
	api.GET("/returned-items/count", ctls.ReturnedItems.Count)
	api.GET("/returned-items/:id", ctls.ReturnedItems.Get)
	api.DELETE("/returned-items/:id", ctls.ReturnedItems.Delete)

	api.GET("/overdue-items", ctls.OverdueItems.List)
	api.GET("/overdue-items/count", ctls.OverdueItems.Count)
	api.GET("/overdue-items/:id", ctls.OverdueItems.Get)
	api.DELETE("/overdue-items/:id", ctls.OverdueItems.Delete)

	e.GET("/management/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "UP"})
	})
	e.GET("/management/health/readiness", func(c echo.Context) error {
		if ctls.Health != nil && ctls.Health.Ready() {
			return c.JSON(http.StatusOK, map[string]string{"status": "UP"})
		}
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "OUT_OF_SERVICE"})
	})

	return e
}

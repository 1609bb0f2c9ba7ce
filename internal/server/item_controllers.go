package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

// RentedItemStore is the persistence surface of the rented-item resource.
type RentedItemStore interface {
	FindByID(ctx context.Context, id int64) (*domain.RentedItem, error)
	FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.RentedItem, error)
	FindByRental(ctx context.Context, rentalID int64) ([]domain.RentedItem, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ReturnedItemStore is the persistence surface of the returned-item resource.
type ReturnedItemStore interface {
	FindByID(ctx context.Context, id int64) (*domain.ReturnedItem, error)
	FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.ReturnedItem, error)
	FindByRental(ctx context.Context, rentalID int64) ([]domain.ReturnedItem, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// OverdueItemStore is the persistence surface of the overdue-item resource.
type OverdueItemStore interface {
	FindByID(ctx context.Context, id int64) (*domain.OverdueItem, error)
	FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.OverdueItem, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// RentedItemController serves the rented-item resource.
type RentedItemController struct {
	items RentedItemStore
}

// NewRentedItemController creates a rented-item controller.
func NewRentedItemController(items RentedItemStore) *RentedItemController {
	return &RentedItemController{items: items}
}

// List returns one page of rented items. A rentalId query parameter limits
// the result to one rental's open items.
func (ctl *RentedItemController) List(c echo.Context) error {
	if raw := c.QueryParam("rentalId"); raw != "" {
		rentalID := parseIntParam(raw, -1)
		if rentalID < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid rentalId query parameter"})
		}

		items, err := ctl.items.FindByRental(c.Request().Context(), int64(rentalID))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, rentedItemResponses(items))
	}

	items, err := ctl.items.FindAllBy(c.Request().Context(), pageableFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, rentedItemResponses(items))
}

// Get returns one rented item.
func (ctl *RentedItemController) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	item, err := ctl.items.FindByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "rented item not found"})
	}

	return c.JSON(http.StatusOK, toRentedItemResponse(*item))
}

// Count returns the total number of rented items.
func (ctl *RentedItemController) Count(c echo.Context) error {
	count, err := ctl.items.Count(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, countResponse{Count: count})
}

// Delete removes one rented item. Deleting an absent id completes silently.
func (ctl *RentedItemController) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	if err := ctl.items.DeleteByID(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ReturnedItemController serves the returned-item resource.
type ReturnedItemController struct {
	items ReturnedItemStore
}

// NewReturnedItemController creates a returned-item controller.
func NewReturnedItemController(items ReturnedItemStore) *ReturnedItemController {
	return &ReturnedItemController{items: items}
}

// List returns one page of returned items. A rentalId query parameter
// limits the result to one rental's history.
func (ctl *ReturnedItemController) List(c echo.Context) error {
	if raw := c.QueryParam("rentalId"); raw != "" {
		rentalID := parseIntParam(raw, -1)
		if rentalID < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid rentalId query parameter"})
		}

		items, err := ctl.items.FindByRental(c.Request().Context(), int64(rentalID))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, returnedItemResponses(items))
	}

	items, err := ctl.items.FindAllBy(c.Request().Context(), pageableFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, returnedItemResponses(items))
}

// Get returns one returned item.
func (ctl *ReturnedItemController) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	item, err := ctl.items.FindByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "returned item not found"})
	}

	return c.JSON(http.StatusOK, toReturnedItemResponse(*item))
}

// Count returns the total number of returned items.
func (ctl *ReturnedItemController) Count(c echo.Context) error {
	count, err := ctl.items.Count(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, countResponse{Count: count})
}

// Delete removes one returned item. Deleting an absent id completes silently.
func (ctl *ReturnedItemController) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	if err := ctl.items.DeleteByID(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// OverdueItemController serves the overdue-item resource.
type OverdueItemController struct {
	items OverdueItemStore
}

// NewOverdueItemController creates an overdue-item controller.
func NewOverdueItemController(items OverdueItemStore) *OverdueItemController {
	return &OverdueItemController{items: items}
}

// List returns one page of overdue items.
func (ctl *OverdueItemController) List(c echo.Context) error {
	items, err := ctl.items.FindAllBy(c.Request().Context(), pageableFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]overdueItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toOverdueItemResponse(item))
	}

	return c.JSON(http.StatusOK, resp)
}

// Get returns one overdue item.
func (ctl *OverdueItemController) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	item, err := ctl.items.FindByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "overdue item not found"})
	}

	return c.JSON(http.StatusOK, toOverdueItemResponse(*item))
}

// Count returns the total number of overdue items.
func (ctl *OverdueItemController) Count(c echo.Context) error {
	count, err := ctl.items.Count(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, countResponse{Count: count})
}

// Delete removes one overdue item. Deleting an absent id completes silently.
func (ctl *OverdueItemController) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	if err := ctl.items.DeleteByID(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func rentedItemResponses(items []domain.RentedItem) []rentedItemResponse {
	resp := make([]rentedItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toRentedItemResponse(item))
	}
	return resp
}

func returnedItemResponses(items []domain.ReturnedItem) []returnedItemResponse {
	resp := make([]returnedItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toReturnedItemResponse(item))
	}
	return resp
}

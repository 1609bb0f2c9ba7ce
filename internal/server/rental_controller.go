package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/service"
)

// RentalController serves the rental resource and the rent/return
// operations.
type RentalController struct {
	rentals service.RentalService
}

// NewRentalController creates a rental controller on top of the service.
func NewRentalController(rentals service.RentalService) *RentalController {
	return &RentalController{rentals: rentals}
}

// Create registers a new rental account.
func (ctl *RentalController) Create(c echo.Context) error {
	var req rentalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	rental := domain.NewRental(req.UserID)
	if req.RentalStatus != "" {
		rental.RentalStatus = domain.RentalStatus(req.RentalStatus)
	}
	rental.LateFee = req.LateFee

	if err := ctl.rentals.Save(c.Request().Context(), rental); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toRentalResponse(rental))
}

// Update fully replaces one rental.
func (ctl *RentalController) Update(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	var req rentalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	existing, err := ctl.rentals.FindOne(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if existing == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "rental not found"})
	}

	existing.UserID = req.UserID
	if req.RentalStatus != "" {
		existing.RentalStatus = domain.RentalStatus(req.RentalStatus)
	}
	existing.LateFee = req.LateFee

	if err := ctl.rentals.Update(c.Request().Context(), existing); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toRentalResponse(existing))
}

// Patch applies a partial update; absent fields are left untouched.
func (ctl *RentalController) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	var req rentalPatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	patch := service.RentalPatch{ID: id, UserID: req.UserID, LateFee: req.LateFee}
	if req.RentalStatus != nil {
		status := domain.RentalStatus(*req.RentalStatus)
		patch.RentalStatus = &status
	}

	rental, err := ctl.rentals.PartialUpdate(c.Request().Context(), patch)
	if err != nil {
		return writeError(c, err)
	}
	if rental == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "rental not found"})
	}

	return c.JSON(http.StatusOK, toRentalResponse(rental))
}

// List returns one page of rentals.
func (ctl *RentalController) List(c echo.Context) error {
	rentals, err := ctl.rentals.FindAll(c.Request().Context(), pageableFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}

	resp := make([]rentalResponse, 0, len(rentals))
	for i := range rentals {
		resp = append(resp, toRentalResponse(&rentals[i]))
	}

	return c.JSON(http.StatusOK, resp)
}

// Count returns the total number of rentals.
func (ctl *RentalController) Count(c echo.Context) error {
	count, err := ctl.rentals.CountAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, countResponse{Count: count})
}

// Get returns one rental with its item collections.
func (ctl *RentalController) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	rental, err := ctl.rentals.FindOne(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if rental == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "rental not found"})
	}

	return c.JSON(http.StatusOK, toRentalResponse(rental))
}

// Delete removes one rental. Deleting an absent id completes silently.
func (ctl *RentalController) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid id"})
	}

	if err := ctl.rentals.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RentBook rents one book for the given user.
func (ctl *RentalController) RentBook(c echo.Context) error {
	userID, bookID, err := rentParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	rental, err := ctl.rentals.RentBook(c.Request().Context(), userID, bookID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toRentalResponse(rental))
}

// ReturnBook returns one book for the given user.
func (ctl *RentalController) ReturnBook(c echo.Context) error {
	userID, bookID, err := rentParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}

	rental, err := ctl.rentals.ReturnBook(c.Request().Context(), userID, bookID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toRentalResponse(rental))
}

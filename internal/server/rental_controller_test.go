package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoniter "github.com/json-iterator/go"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/health"
	"github.com/booklend/rental-service/internal/server"
	"github.com/booklend/rental-service/internal/service"
	"github.com/booklend/rental-service/internal/store"
)

type fakeRentalService struct {
	rentals map[int64]*domain.Rental
	rentErr error
}

func (f *fakeRentalService) Save(_ context.Context, rental *domain.Rental) error {
	rental.ID = int64(len(f.rentals) + 1)
	f.rentals[rental.ID] = rental
	return nil
}

func (f *fakeRentalService) Update(_ context.Context, rental *domain.Rental) error {
	f.rentals[rental.ID] = rental
	return nil
}

func (f *fakeRentalService) PartialUpdate(_ context.Context, patch service.RentalPatch) (*domain.Rental, error) {
	rental := f.rentals[patch.ID]
	if rental == nil {
		return nil, nil
	}
	if patch.LateFee != nil {
		rental.LateFee = *patch.LateFee
	}
	return rental, nil
}

func (f *fakeRentalService) FindAll(_ context.Context, _ *store.Pageable) ([]domain.Rental, error) {
	all := make([]domain.Rental, 0, len(f.rentals))
	for _, rental := range f.rentals {
		all = append(all, *rental)
	}
	return all, nil
}

func (f *fakeRentalService) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.rentals)), nil
}

func (f *fakeRentalService) FindOne(_ context.Context, id int64) (*domain.Rental, error) {
	return f.rentals[id], nil
}

func (f *fakeRentalService) Delete(_ context.Context, id int64) error {
	delete(f.rentals, id)
	return nil
}

func (f *fakeRentalService) RentBook(_ context.Context, userID int64, bookID int64) (*domain.Rental, error) {
	if f.rentErr != nil {
		return nil, f.rentErr
	}
	rental := domain.NewRental(userID)
	rental.ID = 1
	_ = rental.RentBook(bookID, "Some Book")
	return rental, nil
}

func (f *fakeRentalService) ReturnBook(_ context.Context, userID int64, _ int64) (*domain.Rental, error) {
	if f.rentErr != nil {
		return nil, f.rentErr
	}
	rental := domain.NewRental(userID)
	rental.ID = 1
	return rental, nil
}

type emptyRentedItems struct{}

func (emptyRentedItems) FindByID(_ context.Context, _ int64) (*domain.RentedItem, error) {
	return nil, nil
}
func (emptyRentedItems) FindAllBy(_ context.Context, _ *store.Pageable) ([]domain.RentedItem, error) {
	return nil, nil
}
func (emptyRentedItems) FindByRental(_ context.Context, _ int64) ([]domain.RentedItem, error) {
	return nil, nil
}
func (emptyRentedItems) DeleteByID(_ context.Context, _ int64) error { return nil }
func (emptyRentedItems) Count(_ context.Context) (int64, error)      { return 0, nil }

type emptyReturnedItems struct{}

func (emptyReturnedItems) FindByID(_ context.Context, _ int64) (*domain.ReturnedItem, error) {
	return nil, nil
}
func (emptyReturnedItems) FindAllBy(_ context.Context, _ *store.Pageable) ([]domain.ReturnedItem, error) {
	return nil, nil
}
func (emptyReturnedItems) FindByRental(_ context.Context, _ int64) ([]domain.ReturnedItem, error) {
	return nil, nil
}
func (emptyReturnedItems) DeleteByID(_ context.Context, _ int64) error { return nil }
func (emptyReturnedItems) Count(_ context.Context) (int64, error)      { return 0, nil }

type emptyOverdueItems struct{}

func (emptyOverdueItems) FindByID(_ context.Context, _ int64) (*domain.OverdueItem, error) {
	return nil, nil
}
func (emptyOverdueItems) FindAllBy(_ context.Context, _ *store.Pageable) ([]domain.OverdueItem, error) {
	return nil, nil
}
func (emptyOverdueItems) DeleteByID(_ context.Context, _ int64) error { return nil }
func (emptyOverdueItems) Count(_ context.Context) (int64, error)      { return 0, nil }

func newTestServer(svc *fakeRentalService, state *health.State) *echo.Echo {
	return server.New(server.Controllers{
		Rentals:       server.NewRentalController(svc),
		RentedItems:   server.NewRentedItemController(emptyRentedItems{}),
		ReturnedItems: server.NewReturnedItemController(emptyReturnedItems{}),
		OverdueItems:  server.NewOverdueItemController(emptyOverdueItems{}),
		Health:        state,
	})
}

func newFakeService() *fakeRentalService {
	return &fakeRentalService{rentals: make(map[int64]*domain.Rental)}
}

func Test_CreateRental(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodPost, "/api/rentals", strings.NewReader(`{"userId": 42}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["userId"])
	assert.Equal(t, "RENT_AVAILABLE", body["rentalStatus"])
}

func Test_CreateRental_ValidationFailure(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodPost, "/api/rentals", strings.NewReader(`{"userId": 0}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_GetRental_NotFound(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodGet, "/api/rentals/99", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_GetRental_InvalidID(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodGet, "/api/rentals/not-a-number", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_RentBook_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"rental unavailable", domain.ErrRentalUnavailable, http.StatusConflict},
		{"book not rented", domain.ErrBookNotRented, http.StatusBadRequest},
		{"unknown user", service.ErrRentalNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakeService()
			svc.rentErr = tc.err
			e := newTestServer(svc, health.NewState())

			req := httptest.NewRequest(http.MethodPost, "/api/rentals/42/rented-items/7", nil)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func Test_RentBook_HappyPath(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodPost, "/api/rentals/42/rented-items/7", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["userId"])
	assert.Len(t, body["rentedItems"], 1)
}

func Test_DeleteRental_IsIdempotent(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodDelete, "/api/rentals/99", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_DeleteRentedItem_IsIdempotent(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodDelete, "/api/rented-items/5", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_ReadinessEndpoint(t *testing.T) {
	state := health.NewState()
	e := newTestServer(newFakeService(), state)

	req := httptest.NewRequest(http.MethodGet, "/management/health/readiness", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready until marked")

	state.SetReady()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	state.SetShuttingDown()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "draining reports not ready")
}

func Test_HealthEndpoint(t *testing.T) {
	e := newTestServer(newFakeService(), health.NewState())

	req := httptest.NewRequest(http.MethodGet, "/management/health", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/booklend/rental-service/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 1000
)

// pageableFromRequest reads page, size and sort query parameters. sort takes
// the form "property,asc" or "property,desc" and may repeat. Missing
// parameters fall back to page 0 with the default size.
func pageableFromRequest(c echo.Context) *store.Pageable {
	page := parseIntParam(c.QueryParam("page"), 0)
	if page < 0 {
		page = 0
	}

	size := parseIntParam(c.QueryParam("size"), defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	var orders []store.Order
	for _, raw := range c.QueryParams()["sort"] {
		property, direction, _ := strings.Cut(raw, ",")
		if property == "" {
			continue
		}
		if strings.EqualFold(direction, "desc") {
			orders = append(orders, store.Desc(property))
			continue
		}
		orders = append(orders, store.Asc(property))
	}

	return store.PageRequest(page, size, orders...)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// rentParams reads the userId and bookId path parameters of the rent and
// return operations.
func rentParams(c echo.Context) (int64, int64, error) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid userId path parameter")
	}

	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bookId path parameter")
	}

	return userID, bookID, nil
}

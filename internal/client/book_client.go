// Package client holds the outbound HTTP client for the external
// book-catalog service.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// BookInfo is the catalog's description of one book.
type BookInfo struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// BookCatalog looks up book metadata in the external catalog service.
type BookCatalog interface {
	GetBookInfo(ctx context.Context, bookID int64) (BookInfo, error)
}

// HTTPBookCatalog is the HTTP implementation of BookCatalog.
type HTTPBookCatalog struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBookCatalog creates a catalog client against the given base URL.
func NewHTTPBookCatalog(baseURL string) *HTTPBookCatalog {
	return &HTTPBookCatalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetBookInfo fetches one book's metadata from the catalog.
func (c *HTTPBookCatalog) GetBookInfo(ctx context.Context, bookID int64) (BookInfo, error) {
	url := fmt.Sprintf("%s/api/books/bookInfo/%d", c.baseURL, bookID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return BookInfo{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return BookInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BookInfo{}, fmt.Errorf("book catalog returned %s for book %d", resp.Status, bookID)
	}

	var info BookInfo
	if err := jsoniter.ConfigFastest.NewDecoder(resp.Body).Decode(&info); err != nil {
		return BookInfo{}, err
	}

	return info, nil
}

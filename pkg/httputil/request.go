package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes error response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParsePathString extracts a string path parameter
func ParsePathString(r *http.Request, key string) (string, error) {
	vars := mux.Vars(r)
	str := vars[key]
	if str == "" {
		return "", fmt.Errorf("missing path parameter: %s", key)
	}
	return str, nil
}

// ParsePathStringOrError extracts a string path parameter and writes error on failure
func ParsePathStringOrError(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	val, err := ParsePathString(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return "", false
	}
	return val, true
}

// Pagination defaults and caps
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination holds the parsed page window for a listing request
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page window
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination parses page/limit query parameters with defaults and caps.
// Invalid or out-of-range values fall back to the defaults rather than
// failing the request.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > MaxLimit {
				limit = MaxLimit
			}
			p.Limit = limit
		}
	}

	return p
}

// PageInfo is the pagination envelope returned alongside listings
type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalPosts  int64 `json:"totalPosts"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPageInfo computes the pagination envelope for a result window
func NewPageInfo(p Pagination, total int64) PageInfo {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return PageInfo{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalPosts:  total,
		HasNext:     int64(p.Page)*int64(p.Limit) < total,
		HasPrev:     p.Page > 1,
	}
}

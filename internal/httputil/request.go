package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	models "clientportal/internal/domain/models/portal"
)

// DateLayout is the calendar date format accepted in query strings
const DateLayout = "2006-01-02"

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// OptionalQuery returns a trimmed query value, or nil when absent or blank
func OptionalQuery(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// ParsePageRequest reads page and page_size. Missing values are left zero
// for the service to default; malformed values are an error.
func ParsePageRequest(r *http.Request) (models.PageRequest, error) {
	var page models.PageRequest
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, fmt.Errorf("page must be a positive integer")
		}
		if n > models.MaxPage {
			return page, fmt.Errorf("page cannot exceed %d", models.MaxPage)
		}
		page.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, fmt.Errorf("page_size must be a positive integer")
		}
		page.PageSize = n
	}
	return page, nil
}

// ParseDateRange reads start_date and end_date as YYYY-MM-DD
func ParseDateRange(r *http.Request) (models.DateRange, error) {
	var dr models.DateRange
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &dr.Start},
		{"end_date", &dr.End},
	} {
		v := OptionalQuery(r, p.name)
		if v == nil {
			continue
		}
		t, err := time.Parse(DateLayout, *v)
		if err != nil {
			return dr, fmt.Errorf("%s must be formatted YYYY-MM-DD", p.name)
		}
		*p.dst = &t
	}
	return dr, nil
}

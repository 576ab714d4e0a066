// Package handlers implements the HTTP endpoints of the v1 API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/daxreyes/bushfire-beacon/internal/api/pagination"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// listOptions reads the pagination contract from the query string. A cursor
// returned by a previous page takes precedence over explicit
// after_field/after_value parameters.
func listOptions(r *http.Request) (storage.ListOptions, error) {
	query := r.URL.Query()
	opts := storage.ListOptions{
		AfterField: query.Get("after_field"),
		AfterValue: query.Get("after_value"),
	}

	if cursor := query.Get("cursor"); cursor != "" {
		decoded, err := pagination.Decode(cursor)
		if err != nil {
			return storage.ListOptions{}, err
		}
		opts.AfterField = decoded.Field
		opts.AfterValue = decoded.Value
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return storage.ListOptions{}, fmt.Errorf("%w: bad limit %q", pagination.ErrInvalidCursor, raw)
		}
		opts.Limit = limit
	}
	return opts, nil
}

// listResponse is the envelope for paginated collections. NextCursor resumes
// inclusively: the final entry of this page (and any entries sharing its sort
// value) is served again at the top of the next page, so clients following
// the cursor skip rows they already hold.
type listResponse struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// nextCursor encodes the resume point for the page after this one. lastValue
// is the sort-field value of the final entry; empty when the page was short.
// Resumption filters with >=, so the anchor entry reappears on the next page
// rather than being skipped past along with its whole tie group.
func nextCursor(opts storage.ListOptions, defaultField, lastValue string, pageLen int) string {
	limit := opts.Limit
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	if pageLen < limit || lastValue == "" {
		return ""
	}
	field := opts.AfterField
	if field == "" {
		field = defaultField
	}
	return pagination.Encode(field, lastValue)
}

package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/daxreyes/bushfire-beacon/internal/api/pagination"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

func TestListOptionsFromQueryParams(t *testing.T) {
	request := httptest.NewRequest("GET", "/api/v1/facilities?after_field=code&after_value=F100&limit=25", nil)

	opts, err := listOptions(request)
	if err != nil {
		t.Fatalf("listOptions failed: %v", err)
	}
	if opts.AfterField != "code" || opts.AfterValue != "F100" || opts.Limit != 25 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestListOptionsCursorOverridesParams(t *testing.T) {
	cursor := pagination.Encode("name", "Nepean")
	request := httptest.NewRequest("GET", "/api/v1/facilities?after_field=code&after_value=F100&cursor="+cursor, nil)

	opts, err := listOptions(request)
	if err != nil {
		t.Fatalf("listOptions failed: %v", err)
	}
	if opts.AfterField != "name" || opts.AfterValue != "Nepean" {
		t.Errorf("opts = %+v, want cursor fields", opts)
	}
}

func TestListOptionsBadInput(t *testing.T) {
	for _, target := range []string{
		"/api/v1/facilities?limit=abc",
		"/api/v1/facilities?limit=-5",
		"/api/v1/facilities?cursor=!!!",
	} {
		request := httptest.NewRequest("GET", target, nil)
		if _, err := listOptions(request); err == nil {
			t.Errorf("listOptions(%q) expected error", target)
		}
	}
}

func TestNextCursor(t *testing.T) {
	opts := storage.ListOptions{Limit: 2}

	// Full page: point the cursor at the last entry's sort value.
	cursor := nextCursor(opts, "code", "F200", 2)
	decoded, err := pagination.Decode(cursor)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Field != "code" || decoded.Value != "F200" {
		t.Errorf("cursor = %+v", decoded)
	}

	// Short page: no more data, no cursor.
	if got := nextCursor(opts, "code", "F200", 1); got != "" {
		t.Errorf("short page cursor = %q, want empty", got)
	}

	// Explicit sort field is carried through.
	cursor = nextCursor(storage.ListOptions{AfterField: "name", Limit: 2}, "code", "Nepean", 2)
	decoded, err = pagination.Decode(cursor)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Field != "name" {
		t.Errorf("cursor field = %q, want %q", decoded.Field, "name")
	}
}

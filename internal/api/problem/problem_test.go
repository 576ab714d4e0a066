package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daxreyes/bushfire-beacon/internal/api/pagination"
	"github.com/daxreyes/bushfire-beacon/internal/auth"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

func TestFromErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{auth.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusForbidden},
		{auth.ErrExpiredToken, http.StatusForbidden},
		{auth.ErrPrincipalNotFound, http.StatusNotFound},
		{auth.ErrInactiveAccount, http.StatusForbidden},
		{auth.ErrInsufficientPrivilege, http.StatusForbidden},
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrMissingAfterField, http.StatusBadRequest},
		{storage.ErrUnsortableField, http.StatusBadRequest},
		{pagination.ErrInvalidCursor, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/facilities", nil)

		FromError(recorder, request, tt.err, "test")

		if recorder.Code != tt.status {
			t.Errorf("FromError(%v) status = %d, want %d", tt.err, recorder.Code, tt.status)
		}
		if ct := recorder.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("content type = %q", ct)
		}
	}
}

func TestFromErrorMatchesWrappedErrors(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)

	FromError(recorder, request, fmt.Errorf("load report: %w", storage.ErrNotFound), "test")

	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}
}

func TestWriteIncludesDetailInTestEnv(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)

	Write(recorder, request, http.StatusBadRequest, "bad-request", "Bad request", errors.New("field x is wrong"), "test")

	var p ProblemDetails
	if err := json.Unmarshal(recorder.Body.Bytes(), &p); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if p.Detail != "field x is wrong" {
		t.Errorf("detail = %q, want raw error in test env", p.Detail)
	}
	if p.Instance != "/api/v1/users" {
		t.Errorf("instance = %q", p.Instance)
	}
}

func TestWriteHidesDetailInProduction(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)

	Write(recorder, request, http.StatusInternalServerError, "server-error", "Server error", errors.New("pg: connection refused"), "production")

	var p ProblemDetails
	if err := json.Unmarshal(recorder.Body.Bytes(), &p); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if p.Detail == "pg: connection refused" {
		t.Error("raw error leaked into production response")
	}
}

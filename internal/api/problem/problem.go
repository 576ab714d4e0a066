// Package problem writes RFC 7807 problem+json responses and maps core
// error kinds to caller-visible statuses.
package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/api/pagination"
	"github.com/daxreyes/bushfire-beacon/internal/auth"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

const contentType = "application/problem+json"

const typeBase = "https://beacon.daxreyes.dev/problems/"

type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Errors   map[string]interface{} `json:"errors,omitempty"`
}

// Write renders a problem response and logs server-side failures.
func Write(w http.ResponseWriter, r *http.Request, status int, slug, title string, err error, env string) {
	p := ProblemDetails{
		Type:   typeBase + slug,
		Title:  title,
		Status: status,
	}

	if err != nil {
		if env == "development" || env == "test" {
			p.Detail = err.Error()
		} else {
			p.Detail = http.StatusText(status)
		}
	}
	if r != nil {
		p.Instance = r.URL.Path
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		p.Errors = make(map[string]interface{}, len(fieldErrs))
		for _, fe := range fieldErrs {
			p.Errors[fe.Field()] = fmt.Sprintf("failed %q constraint", fe.Tag())
		}
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, p)
}

// FromError maps a core error to the problem taxonomy: authentication
// failures, privilege failures, missing records, and validation errors each
// carry their own status.
func FromError(w http.ResponseWriter, r *http.Request, err error, env string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		Write(w, r, http.StatusUnauthorized, "unauthenticated", "Not authenticated", err, env)
	case errors.Is(err, auth.ErrInvalidCredentials):
		Write(w, r, http.StatusForbidden, "invalid-credentials", "Could not validate credentials", err, env)
	case errors.Is(err, auth.ErrPrincipalNotFound):
		Write(w, r, http.StatusNotFound, "principal-not-found", "User not found", err, env)
	case errors.Is(err, auth.ErrInactiveAccount):
		Write(w, r, http.StatusForbidden, "inactive-account", "Inactive user", err, env)
	case errors.Is(err, auth.ErrInsufficientPrivilege):
		Write(w, r, http.StatusForbidden, "insufficient-privilege", "Not enough privileges", err, env)
	case errors.Is(err, storage.ErrNotFound):
		Write(w, r, http.StatusNotFound, "not-found", "Resource not found", err, env)
	case errors.Is(err, storage.ErrMissingAfterField),
		errors.Is(err, storage.ErrUnsortableField),
		errors.Is(err, pagination.ErrInvalidCursor):
		Write(w, r, http.StatusBadRequest, "bad-pagination", "Invalid pagination parameters", err, env)
	case isValidationError(err):
		Write(w, r, http.StatusUnprocessableEntity, "validation-error", "Validation failed", err, env)
	default:
		Write(w, r, http.StatusInternalServerError, "server-error", "Server error", err, env)
	}
}

func isValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

func WriteProblem(w http.ResponseWriter, p ProblemDetails) {
	payload, err := json.Marshal(p)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

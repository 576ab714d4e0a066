package middleware

import (
	"context"
	"net/http"

	"github.com/daxreyes/bushfire-beacon/internal/api/problem"
	"github.com/daxreyes/bushfire-beacon/internal/auth"
)

type contextKeyAuth string

const principalKey contextKeyAuth = "principal"

// Authenticate extracts the bearer token and session cookie, resolves them
// to a Principal, and stores it in the request context. Both carriers are
// handed to the validator unmodified; priority lives there, not here.
func Authenticate(validator *auth.CredentialValidator, cookieName, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := auth.TokenFromHeader(r.Header.Get("Authorization"))

			var session string
			if cookie, err := r.Cookie(cookieName); err == nil {
				session = cookie.Value
			}

			principal, err := validator.Authenticate(r.Context(), bearer, session)
			if err != nil {
				problem.FromError(w, r, err, env)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive rejects requests whose principal is deactivated.
func RequireActive(env string) func(http.Handler) http.Handler {
	return requireCheck(auth.RequireActive, env)
}

// RequireSuperuser rejects requests whose principal lacks superuser status.
func RequireSuperuser(env string) func(http.Handler) http.Handler {
	return requireCheck(auth.RequireSuperuser, env)
}

func requireCheck(check func(auth.Principal) error, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r)
			if !ok {
				problem.FromError(w, r, auth.ErrUnauthenticated, env)
				return
			}
			if err := check(principal); err != nil {
				problem.FromError(w, r, err, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFrom returns the authenticated principal stored by Authenticate.
func PrincipalFrom(r *http.Request) (auth.Principal, bool) {
	principal, ok := r.Context().Value(principalKey).(auth.Principal)
	return principal, ok
}

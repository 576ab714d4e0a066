// Package api wires handlers and middleware into the HTTP surface.
package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/api/handlers"
	"github.com/daxreyes/bushfire-beacon/internal/api/middleware"
	"github.com/daxreyes/bushfire-beacon/internal/auth"
	"github.com/daxreyes/bushfire-beacon/internal/config"
	"github.com/daxreyes/bushfire-beacon/internal/domain/facilities"
	"github.com/daxreyes/bushfire-beacon/internal/domain/reports"
	"github.com/daxreyes/bushfire-beacon/internal/domain/users"
	"github.com/daxreyes/bushfire-beacon/internal/metrics"
	"github.com/daxreyes/bushfire-beacon/internal/notify"
)

// Deps carries everything the router needs. The caller owns construction
// and teardown of the services and the pool behind DBPing.
type Deps struct {
	Config     config.Config
	Logger     zerolog.Logger
	Users      *users.Service
	Facilities *facilities.Service
	Reports    *reports.Service
	Validator  *auth.CredentialValidator
	Codec      *auth.TokenCodec
	Notifier   *notify.Notifier
	Version    string
	DBPing     func(context.Context) error
}

func NewRouter(d Deps) http.Handler {
	env := d.Config.Environment
	cookieName := d.Config.Auth.SessionCookieName

	authHandler := handlers.NewAuthHandler(d.Users, d.Codec, d.Config.Auth, env)
	usersHandler := handlers.NewUsersHandler(d.Users, d.Config.Auth.OpenRegistration, env)
	facilitiesHandler := handlers.NewFacilitiesHandler(d.Facilities, env)
	reportsHandler := handlers.NewReportsHandler(d.Reports, env)
	streamHandler := handlers.NewStreamHandler(d.Notifier, d.Logger)
	healthHandler := handlers.NewHealthHandler(d.Version, d.DBPing)

	limiter := middleware.NewRateLimiter(d.Config.RateLimit)
	authenticate := middleware.Authenticate(d.Validator, cookieName, env)
	requireActive := middleware.RequireActive(env)
	requireSuperuser := middleware.RequireSuperuser(env)

	// active wraps a handler for any signed-in, non-deactivated account.
	active := func(h http.HandlerFunc) http.Handler {
		return authenticate(requireActive(h))
	}
	// superuser wraps a handler for administrators only.
	superuser := func(h http.HandlerFunc) http.Handler {
		return authenticate(requireActive(requireSuperuser(h)))
	}
	public := func(h http.HandlerFunc) http.Handler {
		return limiter.Public(h)
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(healthHandler.Healthz))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.Readyz))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/login/access-token", methodMux(map[string]http.Handler{
		http.MethodPost: limiter.Login(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/v1/logout", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Logout),
	}))
	mux.Handle("/api/v1/password-recovery/{email}", methodMux(map[string]http.Handler{
		http.MethodPost: limiter.Login(http.HandlerFunc(authHandler.RecoverPassword)),
	}))
	mux.Handle("/api/v1/reset-password", methodMux(map[string]http.Handler{
		http.MethodPost: limiter.Login(http.HandlerFunc(authHandler.ResetPassword)),
	}))
	mux.Handle("/api/v1/verify-account", methodMux(map[string]http.Handler{
		http.MethodPost: public(authHandler.VerifyAccount),
	}))

	mux.Handle("/api/v1/users", methodMux(map[string]http.Handler{
		http.MethodGet:  superuser(usersHandler.List),
		http.MethodPost: superuser(usersHandler.Create),
	}))
	mux.Handle("/api/v1/users/open", methodMux(map[string]http.Handler{
		http.MethodPost: public(usersHandler.Register),
	}))
	mux.Handle("/api/v1/users/me", methodMux(map[string]http.Handler{
		http.MethodGet: active(usersHandler.Me),
		http.MethodPut: active(usersHandler.UpdateMe),
	}))
	mux.Handle("/api/v1/users/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    superuser(usersHandler.Get),
		http.MethodPut:    superuser(usersHandler.Update),
		http.MethodDelete: superuser(usersHandler.Delete),
	}))

	mux.Handle("/api/v1/facilities", methodMux(map[string]http.Handler{
		http.MethodGet:  public(facilitiesHandler.List),
		http.MethodPost: superuser(facilitiesHandler.Create),
	}))
	mux.Handle("/api/v1/facilities/{code}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(facilitiesHandler.Get),
		http.MethodPut:    superuser(facilitiesHandler.Update),
		http.MethodDelete: superuser(facilitiesHandler.Delete),
	}))

	mux.Handle("/api/v1/reports", methodMux(map[string]http.Handler{
		http.MethodGet:  public(reportsHandler.List),
		http.MethodPost: active(reportsHandler.Create),
	}))
	mux.Handle("/api/v1/reports/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    public(reportsHandler.Get),
		http.MethodPut:    superuser(reportsHandler.Update),
		http.MethodDelete: superuser(reportsHandler.Delete),
	}))

	mux.Handle("/api/v1/stream", http.HandlerFunc(streamHandler.Serve))

	return middleware.RequestLogging(d.Logger)(mux)
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

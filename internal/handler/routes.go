package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msomdec/agenda/internal/service"
)

// Options carries the settings routes need from configuration.
type Options struct {
	CookieSecure bool
	PageSize     int
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, db Pinger, auth *service.AuthService, entries *service.EntryService, limiter *service.LoginLimiter, opts Options) {
	health := NewHealthHandler(db)
	authHandler := NewAuthHandler(auth, limiter, opts.CookieSecure)
	agenda := NewAgendaHandler(entries, opts.PageSize)

	requireAuth := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }
	optionalAuth := func(h http.HandlerFunc) http.Handler { return OptionalAuth(auth, h) }

	mux.HandleFunc("GET /healthz", health.HandleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /", optionalAuth(HandleHome))

	mux.HandleFunc("GET /register", authHandler.HandleRegisterPage)
	mux.HandleFunc("POST /register", authHandler.HandleRegister)
	mux.HandleFunc("GET /login", authHandler.HandleLoginPage)
	mux.HandleFunc("POST /login", authHandler.HandleLogin)
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)
	mux.Handle("GET /account/password", requireAuth(authHandler.HandlePasswordPage))
	mux.Handle("POST /account/password", requireAuth(authHandler.HandleChangePassword))

	mux.Handle("GET /agenda", requireAuth(agenda.HandleAgenda))
	mux.Handle("POST /agenda", requireAuth(agenda.HandleCreate))
	mux.Handle("GET /agenda/export.csv", requireAuth(agenda.HandleExportCSV))
	mux.Handle("GET /agenda/export.xlsx", requireAuth(agenda.HandleExportXLSX))
	mux.Handle("GET /entries/{id}/edit", requireAuth(agenda.HandleEditPage))
	mux.Handle("POST /entries/{id}/edit", requireAuth(agenda.HandleEdit))
	mux.Handle("POST /entries/{id}/complete", requireAuth(agenda.HandleComplete))
	mux.Handle("POST /entries/{id}/delete", requireAuth(agenda.HandleDelete))
}

// Wrap applies the middleware every response goes through.
func Wrap(mux http.Handler) http.Handler {
	return SecurityHeaders(RequestLogger(Instrument(mux)))
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/agenda/internal/view"
)

// renderPage writes a full HTML page with the given status code.
func renderPage(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render page", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

// renderError answers with an error page, or with plain text for Datastar
// requests which cannot display a page.
func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isDatastar(r) {
		http.Error(w, message, status)
		return
	}
	username := ""
	if user := UserFromContext(r.Context()); user != nil {
		username = user.Username
	}
	renderPage(w, r, status, view.ErrorPage(username, status, message))
}

// internalError logs err under op and answers with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "error", err, "request_id", RequestIDFromContext(r.Context()))
	renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

package handler

import (
	"net/http"

	"github.com/msomdec/agenda/internal/view"
)

// HandleHome renders the landing page. Signed-in users go straight to their
// agenda.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderError(w, r, http.StatusNotFound, "Page not found.")
		return
	}
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/agenda", http.StatusSeeOther)
		return
	}
	renderPage(w, r, http.StatusOK, view.HomePage(""))
}

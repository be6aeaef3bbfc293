package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExportCSV downloads the filtered entry list as CSV.
// GET /agenda/export.csv
func (h *AgendaHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "text/csv; charset=utf-8", "agenda.csv", service.WriteCSV)
}

// HandleExportXLSX downloads the filtered entry list as an Excel workbook.
// GET /agenda/export.xlsx
func (h *AgendaHandler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, xlsxContentType, "agenda.xlsx", service.WriteXLSX)
}

func (h *AgendaHandler) export(w http.ResponseWriter, r *http.Request, contentType, filename string, write func(io.Writer, []domain.Entry) error) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lq, err := parseListQuery(r.URL.Query())
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.entries.List(r.Context(), user.ID, lq.filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, r, "list entries for export", err)
		return
	}

	// Buffer so an encoding failure can still become a 500.
	var buf bytes.Buffer
	if err := write(&buf, entries); err != nil {
		internalError(w, r, "encode export", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("write export", "error", err)
	}
}

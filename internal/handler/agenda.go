package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/agenda/internal/calendar"
	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/service"
	"github.com/msomdec/agenda/internal/view"
)

// AgendaHandler serves the entry list and the entry lifecycle endpoints.
type AgendaHandler struct {
	entries  *service.EntryService
	pageSize int
}

// NewAgendaHandler creates a new AgendaHandler listing pageSize entries per
// page.
func NewAgendaHandler(entries *service.EntryService, pageSize int) *AgendaHandler {
	if pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}
	return &AgendaHandler{entries: entries, pageSize: pageSize}
}

// listQuery is the parsed query string of the agenda page.
type listQuery struct {
	filter domain.EntryFilter
	page   int
	mode   string
}

// parseListQuery reads month, year, day, page and view. Empty values mean
// "any"; anything unparseable is an ErrInvalidInput.
func parseListQuery(q url.Values) (listQuery, error) {
	lq := listQuery{page: 1, mode: "day"}

	ints := []struct {
		name string
		dst  *int
	}{
		{"month", &lq.filter.Month},
		{"year", &lq.filter.Year},
		{"day", &lq.filter.Day},
		{"page", &lq.page},
	}
	for _, f := range ints {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return lq, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, f.name)
		}
		*f.dst = n
	}

	switch v := q.Get("view"); v {
	case "", "day":
	case "week":
		lq.mode = "week"
	default:
		return lq, fmt.Errorf("%w: unknown view %q", domain.ErrInvalidInput, v)
	}

	if _, err := service.NormalizeFilter(lq.filter); err != nil {
		return lq, err
	}
	return lq, nil
}

// HandleAgenda renders the filtered, paginated and grouped entry list.
// GET /agenda?month=&year=&day=&page=&view=day|week
func (h *AgendaHandler) HandleAgenda(w http.ResponseWriter, r *http.Request) {
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

	h.renderAgenda(w, r, user, lq, http.StatusOK, view.EntryFormValues{}, "")
}

// HandleCreate adds an entry from the add-entry form.
// POST /agenda
func (h *AgendaHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form := service.EntryForm{
		Date:        r.FormValue("date"),
		Day:         r.FormValue("day"),
		Month:       r.FormValue("month"),
		Year:        r.FormValue("year"),
		Description: r.FormValue("description"),
	}

	if _, err := h.entries.CreateFromForm(r.Context(), user.ID, form); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			values := view.EntryFormValues{
				Date:        form.Date,
				Day:         form.Day,
				Month:       form.Month,
				Year:        form.Year,
				Description: form.Description,
			}
			h.renderAgenda(w, r, user, listQuery{page: 1, mode: "day"}, http.StatusUnprocessableEntity, values, err.Error())
			return
		}
		internalError(w, r, "create entry", err)
		return
	}

	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

func (h *AgendaHandler) renderAgenda(w http.ResponseWriter, r *http.Request, user *domain.User, lq listQuery, status int, form view.EntryFormValues, formErr string) {
	ctx := r.Context()

	entries, err := h.entries.List(ctx, user.ID, lq.filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, r, "list entries", err)
		return
	}
	years, err := h.entries.Years(ctx, user.ID)
	if err != nil {
		internalError(w, r, "list entry years", err)
		return
	}
	months, err := h.entries.Months(ctx, user.ID)
	if err != nil {
		internalError(w, r, "list entry months", err)
		return
	}

	page := service.Paginate(entries, lq.page, h.pageSize)
	data := view.AgendaPage{
		Frame:  view.Frame{Username: user.Username},
		Filter: lq.filter,
		Mode:   lq.mode,
		Page:   page,
		Years:  years,
		Months: months,
		Form:   form,
		Error:  formErr,
		Today:  calendar.Today(),
	}
	if lq.mode == "week" {
		data.Weeks = service.GroupByWeek(page.Entries)
	} else {
		data.Days = service.GroupByDate(page.Entries)
	}

	renderPage(w, r, status, view.Agenda(data))
}

// HandleEditPage renders the edit form for an entry the user owns.
// GET /entries/{id}/edit
func (h *AgendaHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.GetForOwner(r.Context(), id, user.ID)
	if err != nil {
		h.entryError(w, r, "get entry", err)
		return
	}

	renderPage(w, r, http.StatusOK, view.EditEntry(view.EditPage{
		Frame: view.Frame{Username: user.Username},
		Entry: *entry,
	}))
}

// HandleEdit saves a new description and optionally marks the entry
// completed.
// POST /entries/{id}/edit
func (h *AgendaHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	description := r.FormValue("new_description")
	var completed *bool
	if v := r.FormValue("completed"); v != "" {
		done := v == "true" || v == "on" || v == "1"
		completed = &done
	}

	err := h.entries.Update(r.Context(), user.ID, id, description, completed)
	if errors.Is(err, domain.ErrInvalidInput) {
		entry, getErr := h.entries.GetForOwner(r.Context(), id, user.ID)
		if getErr != nil {
			h.entryError(w, r, "get entry", getErr)
			return
		}
		entry.Description = description
		renderPage(w, r, http.StatusUnprocessableEntity, view.EditEntry(view.EditPage{
			Frame: view.Frame{Username: user.Username},
			Entry: *entry,
			Error: err.Error(),
		}))
		return
	}
	if err != nil {
		h.entryError(w, r, "update entry", err)
		return
	}

	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

// HandleComplete marks an entry completed. Datastar requests get the
// re-rendered row patched in place; plain form posts are redirected back.
// POST /entries/{id}/complete
func (h *AgendaHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.entries.MarkCompleted(r.Context(), user.ID, id); err != nil {
		h.entryError(w, r, "complete entry", err)
		return
	}

	if !isDatastar(r) {
		http.Redirect(w, r, "/agenda", http.StatusSeeOther)
		return
	}

	entry, err := h.entries.GetForOwner(r.Context(), id, user.ID)
	if err != nil {
		h.entryError(w, r, "get entry", err)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.EntryRow(*entry))
}

// HandleDelete removes an entry. Datastar requests get the row removed in
// place; plain form posts are redirected back.
// POST /entries/{id}/delete
func (h *AgendaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), user.ID, id); err != nil {
		h.entryError(w, r, "delete entry", err)
		return
	}

	if !isDatastar(r) {
		http.Redirect(w, r, "/agenda", http.StatusSeeOther)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.RemoveElementByID("entry-" + strconv.FormatInt(id, 10))
}

// entryError maps entry lifecycle errors to responses. Missing entries and
// entries owned by someone else get the same 404.
func (h *AgendaHandler) entryError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotOwner):
		renderError(w, r, http.StatusNotFound, "Entry not found.")
	case errors.Is(err, domain.ErrInvalidInput):
		renderError(w, r, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, op, err)
	}
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		renderError(w, r, http.StatusNotFound, "Entry not found.")
		return 0, false
	}
	return id, true
}

package view

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/msomdec/agenda/internal/calendar"
	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"seq": seq,
}).ParseFS(templateFS, "templates/*.html"))

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Frame is the data every full page shares.
type Frame struct {
	Title    string
	Username string
}

// SignedIn reports whether the navbar should show account links.
func (f Frame) SignedIn() bool { return f.Username != "" }

// HomePage renders the landing page for visitors.
func HomePage(username string) templ.Component {
	return render("home", Frame{Title: "Agenda", Username: username})
}

// FormPage is the data for the login, register and password forms. Values
// holds previously submitted non-secret fields.
type FormPage struct {
	Frame
	Error  string
	Notice string
	Values map[string]string
}

// LoginPage renders the login form.
func LoginPage(data FormPage) templ.Component {
	data.Title = "Log in"
	return render("login", data)
}

// RegisterPage renders the registration form.
func RegisterPage(data FormPage) templ.Component {
	data.Title = "Register"
	return render("register", data)
}

// PasswordPage renders the change-password form.
func PasswordPage(data FormPage) templ.Component {
	data.Title = "Change password"
	return render("password", data)
}

// ErrorPage renders a minimal error page.
func ErrorPage(username string, status int, message string) templ.Component {
	return render("error", struct {
		Frame
		Status  int
		Message string
	}{Frame{Title: strconv.Itoa(status), Username: username}, status, message})
}

// AgendaPage is the data for the entry list.
type AgendaPage struct {
	Frame
	Filter domain.EntryFilter
	Mode   string
	Page   service.Page
	Days   []service.DateGroup
	Weeks  []service.WeekGroup
	Years  []int
	Months []calendar.Month
	Form   EntryFormValues
	Error  string
	Today  calendar.Date
}

// EntryFormValues echoes the add-entry form after a failed submission.
type EntryFormValues struct {
	Date        string
	Day         string
	Month       string
	Year        string
	Description string
}

// HasParts reports whether any of the separate day, month or year fields
// were filled in.
func (v EntryFormValues) HasParts() bool {
	return v.Day != "" || v.Month != "" || v.Year != ""
}

// Agenda renders the entry list page.
func Agenda(data AgendaPage) templ.Component {
	data.Title = "Agenda"
	return render("agenda", data)
}

// AllMonths lists the twelve months for the month selector.
func (p AgendaPage) AllMonths() []calendar.Month { return calendar.Months() }

// WeekMode reports whether entries are grouped by week.
func (p AgendaPage) WeekMode() bool { return p.Mode == "week" }

// Query returns the filter as query parameters, without the page number.
func (p AgendaPage) Query() url.Values {
	q := url.Values{}
	if p.Filter.Month > 0 {
		q.Set("month", strconv.Itoa(p.Filter.Month))
	}
	if p.Filter.Year > 0 {
		q.Set("year", strconv.Itoa(p.Filter.Year))
	}
	if p.Filter.Day > 0 {
		q.Set("day", strconv.Itoa(p.Filter.Day))
	}
	if p.WeekMode() {
		q.Set("view", "week")
	}
	return q
}

// PageURL links to page n of the current listing.
func (p AgendaPage) PageURL(n int) string {
	q := p.Query()
	q.Set("page", strconv.Itoa(n))
	return "/agenda?" + q.Encode()
}

// PrevURL links to the previous page.
func (p AgendaPage) PrevURL() string { return p.PageURL(p.Page.Page - 1) }

// NextURL links to the next page.
func (p AgendaPage) NextURL() string { return p.PageURL(p.Page.Page + 1) }

// ModeURL links to the current listing grouped by mode.
func (p AgendaPage) ModeURL(mode string) string {
	q := p.Query()
	q.Del("view")
	if mode == "week" {
		q.Set("view", "week")
	}
	if enc := q.Encode(); enc != "" {
		return "/agenda?" + enc
	}
	return "/agenda"
}

// ExportURL links to the export of the current filter in format.
func (p AgendaPage) ExportURL(format string) string {
	q := p.Query()
	q.Del("view")
	u := "/agenda/export." + format
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// EntryRow renders one entry as a list item with id "entry-<ID>". It is both
// part of the agenda page and the fragment patched in after completion.
func EntryRow(e domain.Entry) templ.Component {
	return render("entry-row", e)
}

// EditPage is the data for the edit-entry form.
type EditPage struct {
	Frame
	Entry domain.Entry
	Error string
}

// EditEntry renders the edit form for one entry.
func EditEntry(data EditPage) templ.Component {
	data.Title = "Edit entry"
	return render("edit", data)
}

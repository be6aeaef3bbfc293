package service

import (
	"github.com/msomdec/agenda/internal/calendar"
	"github.com/msomdec/agenda/internal/domain"
)

// DefaultPageSize is the number of entries per page when none is configured.
const DefaultPageSize = 25

// Page is one page of a listing.
type Page struct {
	Entries      []domain.Entry
	Page         int // 1-based
	PageSize     int
	TotalPages   int
	TotalEntries int
}

// HasPrev reports whether a page exists before this one.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a page exists after this one.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Paginate slices entries into pages of pageSize and returns the requested
// page. Pages outside [1, TotalPages] are clamped to the nearest valid page,
// so stale links never fail. A pageSize of zero or less uses DefaultPageSize.
func Paginate(entries []domain.Entry, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize

	page = max(page, 1)
	if totalPages > 0 {
		page = min(page, totalPages)
	} else {
		page = 1
	}

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return Page{
		Entries:      entries[start:end],
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		TotalEntries: total,
	}
}

// DateGroup holds the entries that share one date.
type DateGroup struct {
	Date    calendar.Date
	Entries []domain.Entry
}

// GroupByDate groups entries by date. Groups appear in the order their date
// first appears in the input, and entries keep their relative order.
func GroupByDate(entries []domain.Entry) []DateGroup {
	var groups []DateGroup
	index := make(map[calendar.Date]int)
	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			i = len(groups)
			index[e.Date] = i
			groups = append(groups, DateGroup{Date: e.Date})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// WeekGroup holds the entries of one Monday-to-Sunday week.
type WeekGroup struct {
	Start   calendar.Date
	End     calendar.Date
	Entries []domain.Entry
}

// GroupByWeek groups date-ordered entries into Monday-aligned weeks. The
// first week starts on the Monday on or before the earliest entry; an entry
// dated after the current week's Sunday opens a new week aligned to its own
// Monday, so empty weeks are skipped. Weeks ignore year boundaries.
func GroupByWeek(entries []domain.Entry) []WeekGroup {
	var groups []WeekGroup
	for _, e := range entries {
		if n := len(groups); n == 0 || e.Date.After(groups[n-1].End) {
			start := e.Date.WeekStart()
			groups = append(groups, WeekGroup{Start: start, End: start.AddDays(6)})
		}
		last := &groups[len(groups)-1]
		last.Entries = append(last.Entries, e)
	}
	return groups
}

package domain

import (
	"context"
	"time"

	"github.com/msomdec/agenda/internal/calendar"
)

// Entry is a dated agenda item owned by exactly one user.
type Entry struct {
	ID          int64
	UserID      int64
	Date        calendar.Date
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntryFilter narrows a listing. Zero Month, Year or Day means "any".
type EntryFilter struct {
	Month            int
	Year             int
	Day              int
	IncludeCompleted bool
}

// HasDateFilter reports whether any of month, year or day is set.
func (f EntryFilter) HasDateFilter() bool {
	return f.Month != 0 || f.Year != 0 || f.Day != 0
}

// EntryRepository handles entry persistence. Every mutating method takes the
// requesting user's ID and fails with ErrNotOwner when the entry belongs to
// someone else, or ErrNotFound when it does not exist.
type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// GetOwnerUserID returns the ID of the user owning the entry.
	GetOwnerUserID(ctx context.Context, id int64) (int64, error)
	ListByOwner(ctx context.Context, ownerID int64, filter EntryFilter) ([]Entry, error)
	DistinctYears(ctx context.Context, ownerID int64) ([]int, error)
	DistinctMonths(ctx context.Context, ownerID int64) ([]int, error)
	Update(ctx context.Context, requesterID, id int64, description string, completed bool) error
	MarkCompleted(ctx context.Context, requesterID, id int64) error
	Delete(ctx context.Context, requesterID, id int64) error
}

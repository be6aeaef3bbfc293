package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/agenda/internal/calendar"
	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/metrics"
)

// EntryService owns the entry lifecycle. Every read and write is scoped to
// the requesting user; entries of other users are never returned or changed.
type EntryService struct {
	entries domain.EntryRepository
}

// NewEntryService creates a new EntryService.
func NewEntryService(entries domain.EntryRepository) *EntryService {
	return &EntryService{entries: entries}
}

// Create adds an open entry for ownerID.
func (s *EntryService) Create(ctx context.Context, ownerID int64, date calendar.Date, description string) (*domain.Entry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if !date.Valid() {
		return nil, fmt.Errorf("%w: %s is not a valid date", domain.ErrInvalidInput, date)
	}

	entry := &domain.Entry{UserID: ownerID, Date: date, Description: description}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	metrics.EntryOperationsTotal.WithLabelValues("create", "ok").Inc()
	return entry, nil
}

// CreateFromForm validates a submitted add-entry form and creates the entry.
func (s *EntryService) CreateFromForm(ctx context.Context, ownerID int64, form EntryForm) (*domain.Entry, error) {
	form.Description = strings.TrimSpace(form.Description)
	form.Date = strings.TrimSpace(form.Date)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var (
		date calendar.Date
		err  error
	)
	if form.Date != "" {
		date, err = calendar.ParseInput(form.Date)
	} else {
		date, err = calendar.FromParts(form.Day, form.Month, form.Year)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return s.Create(ctx, ownerID, date, form.Description)
}

// NormalizeFilter validates filter ranges and applies the completed-entry
// default: with no month, year or day selected completed entries are hidden,
// and as soon as any of them is selected they are shown.
func NormalizeFilter(filter domain.EntryFilter) (domain.EntryFilter, error) {
	if filter.Month < 0 || filter.Month > 12 {
		return filter, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrInvalidInput)
	}
	if filter.Day < 0 || filter.Day > 31 {
		return filter, fmt.Errorf("%w: day must be between 1 and 31", domain.ErrInvalidInput)
	}
	if filter.Year < 0 || filter.Year > 9999 {
		return filter, fmt.Errorf("%w: year must be between 1 and 9999", domain.ErrInvalidInput)
	}
	if filter.HasDateFilter() {
		filter.IncludeCompleted = true
	}
	return filter, nil
}

// List returns ownerID's entries matching filter in ascending date order.
func (s *EntryService) List(ctx context.Context, ownerID int64, filter domain.EntryFilter) ([]domain.Entry, error) {
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Years returns the distinct years ownerID has entries in, newest first.
func (s *EntryService) Years(ctx context.Context, ownerID int64) ([]int, error) {
	years, err := s.entries.DistinctYears(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}
	return years, nil
}

// Months returns the distinct months ownerID has entries in, with names.
func (s *EntryService) Months(ctx context.Context, ownerID int64) ([]calendar.Month, error) {
	numbers, err := s.entries.DistinctMonths(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("distinct months: %w", err)
	}
	months := make([]calendar.Month, 0, len(numbers))
	for _, n := range numbers {
		months = append(months, calendar.Month{Number: n, Name: calendar.MonthName(n)})
	}
	return months, nil
}

// VerifyOwnership reports whether userID owns entryID. A missing entry is
// reported as not owned.
func (s *EntryService) VerifyOwnership(ctx context.Context, entryID, userID int64) (bool, error) {
	ownerID, err := s.entries.GetOwnerUserID(ctx, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get entry owner: %w", err)
	}
	return ownerID == userID, nil
}

// GetForOwner returns the entry if userID owns it. Entries of other users
// are reported as ErrNotFound.
func (s *EntryService) GetForOwner(ctx context.Context, entryID, userID int64) (*domain.Entry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Update replaces the description of an entry owned by requesterID. When
// completed is non-nil and true the entry is also marked completed; false
// never reopens an entry.
func (s *EntryService) Update(ctx context.Context, requesterID, entryID int64, description string, completed *bool) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	markDone := completed != nil && *completed

	err := s.entries.Update(ctx, requesterID, entryID, description, markDone)
	observe("update", err)
	return err
}

// MarkCompleted marks an entry owned by requesterID as completed.
func (s *EntryService) MarkCompleted(ctx context.Context, requesterID, entryID int64) error {
	err := s.entries.MarkCompleted(ctx, requesterID, entryID)
	observe("complete", err)
	return err
}

// Delete removes an entry owned by requesterID.
func (s *EntryService) Delete(ctx context.Context, requesterID, entryID int64) error {
	err := s.entries.Delete(ctx, requesterID, entryID)
	observe("delete", err)
	return err
}

func observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotOwner):
		result = "denied"
	default:
		result = "error"
	}
	metrics.EntryOperationsTotal.WithLabelValues(op, result).Inc()
}

package sqlite_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/msomdec/agenda/internal/calendar"
	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/repository/sqlite"
)

func seedEntry(t *testing.T, db *sqlite.DB, userID int64, date, description string) *domain.Entry {
	t.Helper()
	d, err := calendar.ParseStorage(date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	e := &domain.Entry{UserID: userID, Date: d, Description: description}
	if err := db.Entries().Create(context.Background(), e); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return e
}

func entryIDs(entries []domain.Entry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func TestEntryRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	e := seedEntry(t, db, user.ID, "2024-01-05", "dentist")
	if e.ID == 0 {
		t.Fatal("expected entry ID to be set")
	}

	got, err := db.Entries().GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Date != calendar.New(2024, time.January, 5) {
		t.Fatalf("expected 2024-01-05, got %s", got.Date)
	}
	if got.Description != "dentist" || got.Completed || got.UserID != user.ID {
		t.Fatalf("unexpected entry: %+v", got)
	}

	owner, err := db.Entries().GetOwnerUserID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetOwnerUserID: %v", err)
	}
	if owner != user.ID {
		t.Fatalf("expected owner %d, got %d", user.ID, owner)
	}

	if _, err := db.Entries().GetByID(ctx, 4242); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepository_Create_UnknownOwner(t *testing.T) {
	db := newTestDB(t)

	e := &domain.Entry{UserID: 777, Date: calendar.New(2024, time.May, 1), Description: "orphan"}
	if err := db.Entries().Create(context.Background(), e); err == nil {
		t.Fatal("expected foreign key error for unknown owner")
	}
}

func TestEntryRepository_ListByOwner_OrderAndScope(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	ctx := context.Background()

	late := seedEntry(t, db, alice.ID, "2024-01-12", "late")
	first := seedEntry(t, db, alice.ID, "2024-01-05", "first")
	second := seedEntry(t, db, alice.ID, "2024-01-05", "second")
	seedEntry(t, db, bob.ID, "2024-01-01", "bob's")

	got, err := db.Entries().ListByOwner(ctx, alice.ID, domain.EntryFilter{IncludeCompleted: true})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}

	want := []int64{first.ID, second.ID, late.ID}
	if !slices.Equal(entryIDs(got), want) {
		t.Fatalf("expected order %v, got %v", want, entryIDs(got))
	}
	for _, e := range got {
		if e.UserID != alice.ID {
			t.Fatalf("listing leaked entry %d of user %d", e.ID, e.UserID)
		}
	}
}

func TestEntryRepository_ListByOwner_Filters(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	ctx := context.Background()
	repo := db.Entries()

	jan := seedEntry(t, db, user.ID, "2024-01-05", "jan")
	feb := seedEntry(t, db, user.ID, "2024-02-05", "feb")
	nextJan := seedEntry(t, db, user.ID, "2025-01-20", "next jan")
	done := seedEntry(t, db, user.ID, "2024-01-07", "done")
	if err := repo.MarkCompleted(ctx, user.ID, done.ID); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	tests := []struct {
		name   string
		filter domain.EntryFilter
		want   []int64
	}{
		{"open only", domain.EntryFilter{}, []int64{jan.ID, feb.ID, nextJan.ID}},
		{"all", domain.EntryFilter{IncludeCompleted: true}, []int64{jan.ID, done.ID, feb.ID, nextJan.ID}},
		{"month", domain.EntryFilter{Month: 1, IncludeCompleted: true}, []int64{jan.ID, done.ID, nextJan.ID}},
		{"year", domain.EntryFilter{Year: 2024, IncludeCompleted: true}, []int64{jan.ID, done.ID, feb.ID}},
		{"month and year", domain.EntryFilter{Month: 1, Year: 2025, IncludeCompleted: true}, []int64{nextJan.ID}},
		{"day", domain.EntryFilter{Day: 5, IncludeCompleted: true}, []int64{jan.ID, feb.ID}},
		{"no match", domain.EntryFilter{Month: 12}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListByOwner(ctx, user.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListByOwner: %v", err)
			}
			if !slices.Equal(entryIDs(got), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, entryIDs(got))
			}
		})
	}
}

func TestEntryRepository_DistinctYearsAndMonths(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")
	ctx := context.Background()

	seedEntry(t, db, user.ID, "2023-11-01", "a")
	seedEntry(t, db, user.ID, "2024-03-01", "b")
	seedEntry(t, db, user.ID, "2024-11-15", "c")
	seedEntry(t, db, other.ID, "2019-06-01", "other")

	years, err := db.Entries().DistinctYears(ctx, user.ID)
	if err != nil {
		t.Fatalf("DistinctYears: %v", err)
	}
	if !slices.Equal(years, []int{2024, 2023}) {
		t.Fatalf("expected [2024 2023], got %v", years)
	}

	months, err := db.Entries().DistinctMonths(ctx, user.ID)
	if err != nil {
		t.Fatalf("DistinctMonths: %v", err)
	}
	if !slices.Equal(months, []int{3, 11}) {
		t.Fatalf("expected [3 11], got %v", months)
	}
}

func TestEntryRepository_Update(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	repo := db.Entries()
	ctx := context.Background()
	e := seedEntry(t, db, user.ID, "2024-01-05", "old")

	if err := repo.Update(ctx, user.ID, e.ID, "new", true); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, e.ID)
	if got.Description != "new" || !got.Completed {
		t.Fatalf("unexpected entry after update: %+v", got)
	}

	// Passing completed=false never clears completion.
	if err := repo.Update(ctx, user.ID, e.ID, "newer", false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(ctx, e.ID)
	if got.Description != "newer" || !got.Completed {
		t.Fatalf("expected completion to stick, got %+v", got)
	}
}

func TestEntryRepository_MutationsRejectOtherOwners(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	repo := db.Entries()
	ctx := context.Background()
	e := seedEntry(t, db, alice.ID, "2024-01-05", "private")

	if err := repo.Update(ctx, bob.ID, e.ID, "hacked", true); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("Update: expected ErrNotOwner, got %v", err)
	}
	if err := repo.MarkCompleted(ctx, bob.ID, e.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("MarkCompleted: expected ErrNotOwner, got %v", err)
	}
	if err := repo.Delete(ctx, bob.ID, e.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("Delete: expected ErrNotOwner, got %v", err)
	}

	got, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Description != "private" || got.Completed {
		t.Fatalf("entry changed by another user: %+v", got)
	}
}

func TestEntryRepository_MissingEntry(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	repo := db.Entries()
	ctx := context.Background()

	if err := repo.Update(ctx, user.ID, 123, "x", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkCompleted(ctx, user.ID, 123); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("MarkCompleted: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, user.ID, 123); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	repo := db.Entries()
	ctx := context.Background()
	e := seedEntry(t, db, user.ID, "2024-01-05", "gone")

	if err := repo.Delete(ctx, user.ID, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, user.ID, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/agenda/internal/domain"
)

// EntryRepository implements domain.EntryRepository using SQLite.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new SQLite-backed EntryRepository.
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db.SqlDB}
}

const entryColumns = `id, user_id, date, description, completed, created_at, updated_at`

func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (user_id, date, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		entry.UserID, entry.Date, entry.Description, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get entry id: %w", err)
	}

	entry.ID = id
	entry.Completed = false
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	e := &domain.Entry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.UserID, &e.Date, &e.Description, &e.Completed, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

func (r *EntryRepository) GetOwnerUserID(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM entries WHERE id = ?`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get entry owner: %w", err)
	}
	return ownerID, nil
}

// ListByOwner returns the owner's entries matching filter, oldest date first
// and in insertion order within a date. The filter is applied literally:
// completed entries are only returned when IncludeCompleted is set.
func (r *EntryRepository) ListByOwner(ctx context.Context, ownerID int64, filter domain.EntryFilter) ([]domain.Entry, error) {
	where := []string{"user_id = ?"}
	args := []any{ownerID}

	if filter.Year != 0 {
		where = append(where, "CAST(substr(date, 1, 4) AS INTEGER) = ?")
		args = append(args, filter.Year)
	}
	if filter.Month != 0 {
		where = append(where, "CAST(substr(date, 6, 2) AS INTEGER) = ?")
		args = append(args, filter.Month)
	}
	if filter.Day != 0 {
		where = append(where, "CAST(substr(date, 9, 2) AS INTEGER) = ?")
		args = append(args, filter.Day)
	}
	if !filter.IncludeCompleted {
		where = append(where, "completed = 0")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY date ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Description, &e.Completed, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *EntryRepository) DistinctYears(ctx context.Context, ownerID int64) ([]int, error) {
	return r.distinctInts(ctx,
		`SELECT DISTINCT CAST(substr(date, 1, 4) AS INTEGER) AS y
		 FROM entries WHERE user_id = ? ORDER BY y DESC`, ownerID)
}

func (r *EntryRepository) DistinctMonths(ctx context.Context, ownerID int64) ([]int, error) {
	return r.distinctInts(ctx,
		`SELECT DISTINCT CAST(substr(date, 6, 2) AS INTEGER) AS m
		 FROM entries WHERE user_id = ? ORDER BY m ASC`, ownerID)
}

func (r *EntryRepository) distinctInts(ctx context.Context, query string, ownerID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query distinct values: %w", err)
	}
	defer rows.Close()

	var values []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Update replaces the description and, when completed is true, marks the
// entry completed. Completion is never cleared.
func (r *EntryRepository) Update(ctx context.Context, requesterID, id int64, description string, completed bool) error {
	return r.mutateOwned(ctx, requesterID, id, "update entry",
		`UPDATE entries SET description = ?, completed = MAX(completed, ?), updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		description, completed, time.Now().UTC(), id, requesterID)
}

func (r *EntryRepository) MarkCompleted(ctx context.Context, requesterID, id int64) error {
	return r.mutateOwned(ctx, requesterID, id, "mark entry completed",
		`UPDATE entries SET completed = 1, updated_at = ? WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, requesterID)
}

func (r *EntryRepository) Delete(ctx context.Context, requesterID, id int64) error {
	return r.mutateOwned(ctx, requesterID, id, "delete entry",
		`DELETE FROM entries WHERE id = ? AND user_id = ?`,
		id, requesterID)
}

// mutateOwned checks ownership and runs stmt in the same transaction, so the
// entry cannot change hands between the check and the write.
func (r *EntryRepository) mutateOwned(ctx context.Context, requesterID, id int64, op, stmt string, args ...any) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var ownerID int64
		err := tx.QueryRowContext(ctx, `SELECT user_id FROM entries WHERE id = ?`, id).Scan(&ownerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("%s: check owner: %w", op, err)
		}
		if ownerID != requesterID {
			return domain.ErrNotOwner
		}

		result, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

package attendance

import (
	"context"
	"database/sql"
	"fmt"

	"smartattendance/internal/store"
)

const selectColumns = `SELECT id, student_name, CAST(date AS TEXT), status FROM attendance`

// Repository issues parameterized statements against the attendance table.
// Every statement runs in auto-commit mode on the shared connection.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo over an open store handle.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one row and returns it with the store-assigned id.
func (r *Repository) Insert(ctx context.Context, name, date string, status Status) (Record, error) {
	var id int64
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO attendance (student_name, date, status)
		VALUES (?, ?, ?)
		RETURNING id
	`), name, date, string(status)).Scan(&id)
	if err != nil {
		return Record{}, fmt.Errorf("%w: inserting record: %w", ErrStore, err)
	}
	return Record{ID: id, StudentName: name, Date: date, Status: status}, nil
}

// FindByName returns every row whose student_name equals name exactly.
func (r *Repository) FindByName(ctx context.Context, name string) ([]Record, error) {
	rows, err := r.db.Client.QueryContext(ctx,
		r.db.Rebind(selectColumns+` WHERE student_name = ? ORDER BY id`), name)
	if err != nil {
		return nil, fmt.Errorf("%w: searching records: %w", ErrStore, err)
	}
	return scanRecords(rows)
}

// All returns every row ordered by id.
func (r *Repository) All(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Client.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing records: %w", ErrStore, err)
	}
	return scanRecords(rows)
}

// SetStatus updates every row matching (name, date) and reports how many changed.
func (r *Repository) SetStatus(ctx context.Context, name, date string, status Status) (int64, error) {
	res, err := r.db.Client.ExecContext(ctx,
		r.db.Rebind(`UPDATE attendance SET status = ? WHERE student_name = ? AND date = ?`),
		string(status), name, date)
	if err != nil {
		return 0, fmt.Errorf("%w: updating records: %w", ErrStore, err)
	}
	return rowsAffected(res)
}

// DeleteMatching removes every row matching (name, date).
func (r *Repository) DeleteMatching(ctx context.Context, name, date string) (int64, error) {
	res, err := r.db.Client.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM attendance WHERE student_name = ? AND date = ?`),
		name, date)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting records: %w", ErrStore, err)
	}
	return rowsAffected(res)
}

// Count returns the number of rows in the table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Client.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting records: %w", ErrStore, err)
	}
	return n, nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: reading rows affected: %w", ErrStore, err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	res := []Record{}
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.StudentName, &rec.Date, &status); err != nil {
			return nil, fmt.Errorf("%w: scanning record: %w", ErrStore, err)
		}
		rec.Status = Status(status)
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating records: %w", ErrStore, err)
	}
	return res, nil
}

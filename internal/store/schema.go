package store

import (
	"context"
	"fmt"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS attendance (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	student_name VARCHAR(255) NOT NULL,
	date         DATE NOT NULL,
	status       TEXT NOT NULL CHECK (status IN ('Present', 'Absent'))
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS attendance (
	id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	student_name VARCHAR(255) NOT NULL,
	date         DATE NOT NULL,
	status       VARCHAR(7) NOT NULL CHECK (status IN ('Present', 'Absent'))
)`

// EnsureSchema creates the attendance table when it does not exist yet.
// Calling it against an existing table is a no-op.
func (d *DB) EnsureSchema(ctx context.Context) error {
	ddl := sqliteSchema
	if d.dialect == Postgres {
		ddl = postgresSchema
	}
	if _, err := d.Client.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating attendance table: %w", err)
	}
	return nil
}

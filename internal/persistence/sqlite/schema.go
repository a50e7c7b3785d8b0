package sqlite

import (
	"context"
	"fmt"
)

// schema is the full DDL. It ships with the binary; Migrate applies it with
// IF NOT EXISTS so restarts are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS resources (
	id          TEXT NOT NULL,
	kind        TEXT NOT NULL CHECK (kind IN ('doctors', 'nurses', 'rooms', 'devices')),
	name        TEXT NOT NULL,
	specialties TEXT NOT NULL DEFAULT '[]',
	skills      TEXT NOT NULL DEFAULT '[]',
	capacity    INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT '',
	meta        TEXT NOT NULL DEFAULT '{}',
	active      INTEGER NOT NULL DEFAULT 1,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	PRIMARY KEY (kind, id)
);

CREATE TABLE IF NOT EXISTS schedules (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	procedure_type TEXT NOT NULL,
	start_time     TEXT NOT NULL,
	end_time       TEXT NOT NULL,
	room_id        TEXT NOT NULL,
	doctor_id      TEXT NOT NULL,
	nurse_ids      TEXT NOT NULL DEFAULT '[]',
	device_ids     TEXT NOT NULL DEFAULT '[]',
	status         TEXT NOT NULL CHECK (status IN ('planned', 'in-progress', 'completed', 'cancelled')),
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schedules_start ON schedules (start_time);

CREATE TABLE IF NOT EXISTS availability_windows (
	resource_kind TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	day_of_week   INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	start_clock   TEXT NOT NULL,
	end_clock     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_availability_resource
	ON availability_windows (resource_kind, resource_id);
`

// Migrate applies the schema to the connected database.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

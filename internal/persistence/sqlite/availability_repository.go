package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// AvailabilityRepository implements persistence.AvailabilityRepository using
// SQLite.
type AvailabilityRepository struct {
	pool *ConnectionPool
}

// NewAvailabilityRepository creates a SQLite-backed availability repository.
func NewAvailabilityRepository(pool *ConnectionPool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// WindowsFor returns the stored weekly windows for one resource ordered by
// day, then start clock.
func (r *AvailabilityRepository) WindowsFor(ctx context.Context, kind persistence.ResourceKind, id string) ([]persistence.AvailabilityWindow, error) {
	query := `
		SELECT day_of_week, start_clock, end_clock
		FROM availability_windows
		WHERE resource_kind = ? AND resource_id = ?
		ORDER BY day_of_week ASC, start_clock ASC
	`
	rows, err := r.pool.db.QueryContext(ctx, query, string(kind), id)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	windows := make([]persistence.AvailabilityWindow, 0)
	for rows.Next() {
		var window persistence.AvailabilityWindow
		var day int
		if err := rows.Scan(&day, &window.Start, &window.End); err != nil {
			return nil, mapError(err)
		}
		window.DayOfWeek = time.Weekday(day)
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return windows, nil
}

// ReplaceWindows swaps the whole window set for one resource.
func (r *AvailabilityRepository) ReplaceWindows(ctx context.Context, kind persistence.ResourceKind, id string, windows []persistence.AvailabilityWindow) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM availability_windows WHERE resource_kind = ? AND resource_id = ?", string(kind), id)
		if err != nil {
			return mapError(err)
		}
		for _, window := range windows {
			_, err := tx.Exec(`
				INSERT INTO availability_windows (resource_kind, resource_id, day_of_week, start_clock, end_clock)
				VALUES (?, ?, ?, ?, ?)
			`, string(kind), id, int(window.DayOfWeek), window.Start, window.End)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// DeleteWindows removes the window set for one resource.
func (r *AvailabilityRepository) DeleteWindows(ctx context.Context, kind persistence.ResourceKind, id string) error {
	_, err := r.pool.db.ExecContext(ctx, "DELETE FROM availability_windows WHERE resource_kind = ? AND resource_id = ?", string(kind), id)
	return mapError(err)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a SQLite-backed schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = "id, title, procedure_type, start_time, end_time, room_id, doctor_id, nurse_ids, device_ids, status, notes, created_at, updated_at"

// CreateSchedule inserts a new reservation.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	if schedule.ID == "" {
		return persistence.Schedule{}, persistence.ErrConstraintViolation
	}

	nurseIDs, err := encodeStrings(schedule.NurseIDs)
	if err != nil {
		return persistence.Schedule{}, err
	}
	deviceIDs, err := encodeStrings(schedule.DeviceIDs)
	if err != nil {
		return persistence.Schedule{}, err
	}

	query := `
		INSERT INTO schedules (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.pool.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.Title,
		schedule.ProcedureType,
		schedule.Start.UTC().Format(time.RFC3339),
		schedule.End.UTC().Format(time.RFC3339),
		schedule.RoomID,
		schedule.DoctorID,
		nurseIDs,
		deviceIDs,
		string(schedule.Status),
		schedule.Notes,
		schedule.CreatedAt.UTC().Format(time.RFC3339),
		schedule.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}
	return schedule, nil
}

// GetSchedule retrieves one reservation by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	if id == "" {
		return persistence.Schedule{}, persistence.ErrNotFound
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	schedule, err := scanSchedule(r.pool.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}
	return schedule, nil
}

// ListSchedules returns reservations matching the filter ordered by start
// time, then ID. Temporal bounds use half-open overlap against [From, To).
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`

	var conditions []string
	var args []any
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.From != nil {
		conditions = append(conditions, "end_time > ?")
		args = append(args, filter.From.UTC().Format(time.RFC3339))
	}
	if filter.To != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, filter.To.UTC().Format(time.RFC3339))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	schedules := make([]persistence.Schedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return schedules, nil
}

// PatchSchedule merges the patch into an existing reservation inside a
// transaction.
func (r *ScheduleRepository) PatchSchedule(ctx context.Context, id string, patch persistence.SchedulePatch) (persistence.Schedule, error) {
	var updated persistence.Schedule
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
		current, err := scanSchedule(tx.QueryRow(query, id).Scan)
		if err != nil {
			return mapError(err)
		}

		updated = patch.ApplyTo(current)

		nurseIDs, err := encodeStrings(updated.NurseIDs)
		if err != nil {
			return err
		}
		deviceIDs, err := encodeStrings(updated.DeviceIDs)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			UPDATE schedules
			SET title = ?, procedure_type = ?, start_time = ?, end_time = ?, room_id = ?, doctor_id = ?, nurse_ids = ?, device_ids = ?, status = ?, notes = ?, updated_at = ?
			WHERE id = ?
		`,
			updated.Title,
			updated.ProcedureType,
			updated.Start.UTC().Format(time.RFC3339),
			updated.End.UTC().Format(time.RFC3339),
			updated.RoomID,
			updated.DoctorID,
			nurseIDs,
			deviceIDs,
			string(updated.Status),
			updated.Notes,
			updated.UpdatedAt.UTC().Format(time.RFC3339),
			id,
		)
		return mapError(err)
	})
	if err != nil {
		return persistence.Schedule{}, err
	}
	return updated, nil
}

// DeleteSchedule removes one reservation.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanSchedule(scan func(dest ...any) error) (persistence.Schedule, error) {
	var (
		schedule             persistence.Schedule
		start, end           string
		nurseIDs, deviceIDs  string
		status               string
		createdAt, updatedAt string
	)
	err := scan(
		&schedule.ID,
		&schedule.Title,
		&schedule.ProcedureType,
		&start,
		&end,
		&schedule.RoomID,
		&schedule.DoctorID,
		&nurseIDs,
		&deviceIDs,
		&status,
		&schedule.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Schedule{}, err
	}

	schedule.Status = persistence.ScheduleStatus(status)
	if schedule.NurseIDs, err = decodeStrings(nurseIDs); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to decode nurse_ids: %w", err)
	}
	if schedule.DeviceIDs, err = decodeStrings(deviceIDs); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to decode device_ids: %w", err)
	}
	if schedule.Start, err = time.Parse(time.RFC3339, start); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if schedule.End, err = time.Parse(time.RFC3339, end); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if schedule.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if schedule.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Schedule{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return schedule, nil
}

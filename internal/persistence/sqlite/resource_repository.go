package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository using SQLite.
type ResourceRepository struct {
	pool *ConnectionPool
}

// NewResourceRepository creates a SQLite-backed resource repository.
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

const resourceColumns = "id, kind, name, specialties, skills, capacity, status, meta, active, created_at, updated_at"

// CreateResource inserts a new directory entry.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error) {
	if resource.ID == "" || !resource.Kind.Valid() {
		return persistence.Resource{}, persistence.ErrConstraintViolation
	}

	specialties, err := encodeStrings(resource.Specialties)
	if err != nil {
		return persistence.Resource{}, err
	}
	skills, err := encodeStrings(resource.Skills)
	if err != nil {
		return persistence.Resource{}, err
	}
	meta, err := encodeMeta(resource.Meta)
	if err != nil {
		return persistence.Resource{}, err
	}

	query := `
		INSERT INTO resources (` + resourceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.pool.db.ExecContext(ctx, query,
		resource.ID,
		string(resource.Kind),
		resource.Name,
		specialties,
		skills,
		resource.Capacity,
		string(resource.Status),
		meta,
		boolToInt(resource.Active),
		resource.CreatedAt.UTC().Format(time.RFC3339),
		resource.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Resource{}, mapError(err)
	}
	return resource, nil
}

// GetResource retrieves one entry by kind and ID.
func (r *ResourceRepository) GetResource(ctx context.Context, kind persistence.ResourceKind, id string) (persistence.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE kind = ? AND id = ?`
	row := r.pool.db.QueryRowContext(ctx, query, string(kind), id)
	resource, err := scanResource(row.Scan)
	if err != nil {
		return persistence.Resource{}, mapError(err)
	}
	return resource, nil
}

// ListResources returns every entry of one kind ordered by name, then ID.
func (r *ResourceRepository) ListResources(ctx context.Context, kind persistence.ResourceKind) ([]persistence.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE kind = ? ORDER BY name ASC, id ASC`
	rows, err := r.pool.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	resources := make([]persistence.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

// PatchResource merges the patch into an existing entry inside a transaction
// so concurrent patches cannot interleave reads and writes.
func (r *ResourceRepository) PatchResource(ctx context.Context, kind persistence.ResourceKind, id string, patch persistence.ResourcePatch) (persistence.Resource, error) {
	var updated persistence.Resource
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + resourceColumns + ` FROM resources WHERE kind = ? AND id = ?`
		current, err := scanResource(tx.QueryRow(query, string(kind), id).Scan)
		if err != nil {
			return mapError(err)
		}

		updated = patch.ApplyTo(current)

		specialties, err := encodeStrings(updated.Specialties)
		if err != nil {
			return err
		}
		skills, err := encodeStrings(updated.Skills)
		if err != nil {
			return err
		}
		meta, err := encodeMeta(updated.Meta)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			UPDATE resources
			SET name = ?, specialties = ?, skills = ?, capacity = ?, status = ?, meta = ?, active = ?, updated_at = ?
			WHERE kind = ? AND id = ?
		`,
			updated.Name,
			specialties,
			skills,
			updated.Capacity,
			string(updated.Status),
			meta,
			boolToInt(updated.Active),
			updated.UpdatedAt.UTC().Format(time.RFC3339),
			string(kind),
			id,
		)
		return mapError(err)
	})
	if err != nil {
		return persistence.Resource{}, err
	}
	return updated, nil
}

// DeleteResource removes one entry along with its availability windows.
// Reservations referencing the resource are left untouched.
func (r *ResourceRepository) DeleteResource(ctx context.Context, kind persistence.ResourceKind, id string) (bool, error) {
	var deleted bool
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM resources WHERE kind = ? AND id = ?", string(kind), id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = affected > 0
		if !deleted {
			return nil
		}
		_, err = tx.Exec("DELETE FROM availability_windows WHERE resource_kind = ? AND resource_id = ?", string(kind), id)
		return mapError(err)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// scanResource reads one row via the supplied Scan function, decoding JSON
// columns and RFC3339 timestamps.
func scanResource(scan func(dest ...any) error) (persistence.Resource, error) {
	var (
		resource                  persistence.Resource
		kind, status              string
		specialties, skills, meta string
		active                    int
		createdAt, updatedAt      string
	)
	err := scan(
		&resource.ID,
		&kind,
		&resource.Name,
		&specialties,
		&skills,
		&resource.Capacity,
		&status,
		&meta,
		&active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Resource{}, err
	}

	resource.Kind = persistence.ResourceKind(kind)
	resource.Status = persistence.DeviceStatus(status)
	resource.Active = active != 0

	if resource.Specialties, err = decodeStrings(specialties); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to decode specialties: %w", err)
	}
	if resource.Skills, err = decodeStrings(skills); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to decode skills: %w", err)
	}
	if resource.Meta, err = decodeMeta(meta); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to decode meta: %w", err)
	}
	if resource.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if resource.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return resource, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(data), nil
}

func decodeStrings(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func encodeMeta(meta map[string]string) (string, error) {
	if meta == nil {
		meta = map[string]string{}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode meta: %w", err)
	}
	return string(data), nil
}

func decodeMeta(data string) (map[string]string, error) {
	if data == "" {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, nil
	}
	return meta, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

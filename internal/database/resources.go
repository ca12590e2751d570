package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pcclub/internal/models"
)

func (db *DB) CreateResource(ctx context.Context, resource *models.Resource) error {
	if resource.Status == "" {
		resource.Status = models.ResourceAvailable
	}

	query := `INSERT INTO resources (name, specs, hourly_rate, status) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		resource.Name,
		resource.Specs,
		resource.HourlyRate.String(),
		string(resource.Status),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to create resource: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	resource.ID = id
	return nil
}

const resourceColumns = `id, name, specs, hourly_rate, status`

func scanResource(row interface{ Scan(...any) error }) (*models.Resource, error) {
	var r models.Resource
	var rate, status string
	if err := row.Scan(&r.ID, &r.Name, &r.Specs, &rate, &status); err != nil {
		return nil, err
	}

	r.Status = models.ResourceStatus(status)
	var err error
	if r.HourlyRate, err = parseDecimal(rate); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) GetResource(ctx context.Context, id int64) (*models.Resource, error) {
	row := db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	resource, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

func (db *DB) ListResources(ctx context.Context) ([]*models.Resource, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

// UpdateResourceStatus sets the administrative flag. Existing reservations
// are untouched: the flag and the booking timeline are independent.
func (db *DB) UpdateResourceStatus(ctx context.Context, id int64, status models.ResourceStatus) error {
	result, err := db.ExecContext(ctx, `UPDATE resources SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update resource status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrResourceNotFound
	}
	return nil
}

// AngelaMos | 2026
// repository.go

package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, location *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	Update(ctx context.Context, location *Location) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Location, error)
	InUse(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, location *Location) error {
	query := `
		INSERT INTO locations (id, name, address)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &location.CreatedAt, query,
		location.ID,
		location.Name,
		location.Address,
	)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Location, error) {
	query := `
		SELECT id, name, address, created_at
		FROM locations
		WHERE id = $1`

	var location Location
	err := r.db.GetContext(ctx, &location, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get location: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}

	return &location, nil
}

func (r *repository) Update(ctx context.Context, location *Location) error {
	query := `
		UPDATE locations
		SET name = $2, address = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		location.ID,
		location.Name,
		location.Address,
	)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update location: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM locations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete location: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Location, error) {
	query := `
		SELECT id, name, address, created_at
		FROM locations
		ORDER BY name`

	var locations []Location
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	return locations, nil
}

func (r *repository) InUse(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM runs WHERE location_id = $1)`

	var inUse bool
	if err := r.db.GetContext(ctx, &inUse, query, id); err != nil {
		return false, fmt.Errorf("check location in use: %w", err)
	}

	return inUse, nil
}

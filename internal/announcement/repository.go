// AngelaMos | 2026
// repository.go

package announcement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type Repository interface {
	GetActive(ctx context.Context) (*Announcement, error)
	Replace(ctx context.Context, message, createdBy string) (*Announcement, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetActive(ctx context.Context) (*Announcement, error) {
	query := `
		SELECT id, message, created_by, created_at, is_active
		FROM announcements
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	var a Announcement
	err := r.db.GetContext(ctx, &a, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}

	return &a, nil
}

// Replace deactivates every prior row and inserts the new one as a single
// transaction, so exactly one announcement is ever active.
func (r *repository) Replace(
	ctx context.Context,
	message, createdBy string,
) (*Announcement, error) {
	a := &Announcement{
		ID:        uuid.New().String(),
		Message:   message,
		CreatedBy: createdBy,
		IsActive:  true,
	}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE announcements SET is_active = false WHERE is_active = true`,
		); err != nil {
			return fmt.Errorf("deactivate announcements: %w", err)
		}

		query := `
			INSERT INTO announcements (id, message, created_by, is_active)
			VALUES ($1, $2, $3, true)
			RETURNING created_at`

		if err := tx.GetContext(ctx, &a.CreatedAt, query,
			a.ID, a.Message, a.CreatedBy,
		); err != nil {
			return fmt.Errorf("create announcement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// AngelaMos | 2026
// repository.go

package run

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
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	Update(ctx context.Context, run *Run) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Run, error)
	ListForUser(ctx context.Context, userID string) ([]Run, map[string]string, error)
	ParticipantsByRun(
		ctx context.Context,
		runIDs []string,
	) (map[string][]Participant, error)
	GuestsByRun(ctx context.Context, runIDs []string) (map[string][]Guest, error)
	SetRSVP(
		ctx context.Context,
		runID, userID, status string,
		override bool,
	) error
	RemoveRSVP(ctx context.Context, runID, userID string) error
	Complete(
		ctx context.Context,
		runID, actorID string,
		attendedIDs, noShowIDs, extraIDs, guestNames []string,
	) error
	CreateWithParticipants(
		ctx context.Context,
		run *Run,
		statusByUserID map[string]string,
	) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const runColumns = `
	r.id, r.title, r.date, r.start_time, r.end_time, r.location_id,
	l.name AS location_name, l.address AS location_address,
	r.description, r.capacity, r.cost_cents, r.is_variable_cost,
	r.total_cost_cents, r.created_by, r.created_at, r.is_historical,
	r.is_completed, r.completed_at, r.completed_by,
	r.final_confirmed_count, r.final_cost_cents`

func (r *repository) Create(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (
			id, title, date, start_time, end_time, location_id, description,
			capacity, cost_cents, is_variable_cost, total_cost_cents,
			created_by, is_historical
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &run.CreatedAt, query,
		run.ID,
		run.Title,
		run.Date,
		run.StartTime,
		run.EndTime,
		run.LocationID,
		run.Description,
		run.Capacity,
		run.CostCents,
		run.IsVariableCost,
		run.TotalCostCents,
		run.CreatedBy,
		run.IsHistorical,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Run, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM runs r
		JOIN locations l ON l.id = r.location_id
		WHERE r.id = $1`, runColumns)

	var run Run
	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	return &run, nil
}

func (r *repository) Update(ctx context.Context, run *Run) error {
	// is_completed guard makes the immutability rule hold even if a stale
	// read raced the completion.
	query := `
		UPDATE runs
		SET title = $2, date = $3, start_time = $4, end_time = $5,
		    location_id = $6, description = $7, capacity = $8,
		    cost_cents = $9, is_variable_cost = $10, total_cost_cents = $11
		WHERE id = $1 AND is_completed = false`

	result, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Title,
		run.Date,
		run.StartTime,
		run.EndTime,
		run.LocationID,
		run.Description,
		run.Capacity,
		run.CostCents,
		run.IsVariableCost,
		run.TotalCostCents,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	if rows == 0 {
		if _, getErr := r.GetByID(ctx, run.ID); getErr != nil {
			return fmt.Errorf("update run: %w", core.ErrNotFound)
		}
		return core.ConflictError("completed runs cannot be edited")
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		run, err := lockRun(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}

		if run.IsCompleted {
			return core.ConflictError("completed runs cannot be deleted")
		}

		for _, q := range []string{
			`DELETE FROM run_guests WHERE run_id = $1`,
			`DELETE FROM run_participants WHERE run_id = $1`,
			`DELETE FROM runs WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete run: %w", err)
			}
		}

		return nil
	})
}

func (r *repository) List(ctx context.Context) ([]Run, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM runs r
		JOIN locations l ON l.id = r.location_id
		ORDER BY r.date DESC, r.start_time DESC`, runColumns)

	var runs []Run
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return runs, nil
}

type userRunRow struct {
	Run
	UserStatus string `db:"user_status"`
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]Run, map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT %s, p.status AS user_status
		FROM runs r
		JOIN locations l ON l.id = r.location_id
		JOIN run_participants p ON p.run_id = r.id
		WHERE p.user_id = $1
		ORDER BY r.date DESC, r.start_time DESC`, runColumns)

	var rows []userRunRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, nil, fmt.Errorf("list runs for user: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	statuses := make(map[string]string, len(rows))
	for _, row := range rows {
		runs = append(runs, row.Run)
		statuses[row.Run.ID] = row.UserStatus
	}

	return runs, statuses, nil
}

func (r *repository) ParticipantsByRun(
	ctx context.Context,
	runIDs []string,
) (map[string][]Participant, error) {
	result := make(map[string][]Participant, len(runIDs))
	if len(runIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT
			p.id, p.run_id, p.user_id, p.status, p.attended, p.no_show,
			p.is_extra, p.updated_at,
			u.username, u.first_name, u.last_name, u.badge
		FROM run_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.run_id IN (?)
		ORDER BY p.updated_at`, runIDs)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	var participants []Participant
	err = r.db.SelectContext(ctx, &participants, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	for _, p := range participants {
		result[p.RunID] = append(result[p.RunID], p)
	}

	return result, nil
}

func (r *repository) GuestsByRun(
	ctx context.Context,
	runIDs []string,
) (map[string][]Guest, error) {
	result := make(map[string][]Guest, len(runIDs))
	if len(runIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, run_id, name, created_at
		FROM run_guests
		WHERE run_id IN (?)
		ORDER BY created_at`, runIDs)
	if err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}

	var guests []Guest
	err = r.db.SelectContext(ctx, &guests, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}

	for _, g := range guests {
		result[g.RunID] = append(result[g.RunID], g)
	}

	return result, nil
}

// SetRSVP serializes the capacity check and the write behind the run's row
// lock: two concurrent confirms for the last slot cannot both pass.
func (r *repository) SetRSVP(
	ctx context.Context,
	runID, userID, status string,
	override bool,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		run, err := lockRun(ctx, tx, runID)
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}

		confirmedCount, err := confirmedCountTx(ctx, tx, runID)
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}

		currentStatus, err := currentStatusTx(ctx, tx, runID, userID)
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}

		if err := CheckRSVP(run, confirmedCount, currentStatus, status, override); err != nil {
			return err
		}

		query := `
			INSERT INTO run_participants (id, run_id, user_id, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (run_id, user_id)
			DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`

		_, err = tx.ExecContext(ctx, query, uuid.New().String(), runID, userID, status)
		if err != nil {
			return fmt.Errorf("set rsvp: %w", err)
		}

		return nil
	})
}

func (r *repository) RemoveRSVP(
	ctx context.Context,
	runID, userID string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		run, err := lockRun(ctx, tx, runID)
		if err != nil {
			return fmt.Errorf("remove rsvp: %w", err)
		}

		if run.IsCompleted {
			return core.ForbiddenError("run is completed and locked")
		}

		query := `
			DELETE FROM run_participants
			WHERE run_id = $1 AND user_id = $2`

		if _, err := tx.ExecContext(ctx, query, runID, userID); err != nil {
			return fmt.Errorf("remove rsvp: %w", err)
		}

		return nil
	})
}

// Complete performs the one-way open → completed reconciliation in a
// single transaction: attendance flags, extras, guests, the frozen cost
// and the per-user counters all land together or not at all.
func (r *repository) Complete(
	ctx context.Context,
	runID, actorID string,
	attendedIDs, noShowIDs, extraIDs, guestNames []string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		run, err := lockRun(ctx, tx, runID)
		if err != nil {
			return fmt.Errorf("complete run: %w", err)
		}

		var confirmedIDs []string
		err = tx.SelectContext(ctx, &confirmedIDs, `
			SELECT user_id FROM run_participants
			WHERE run_id = $1 AND status = $2`, runID, StatusConfirmed)
		if err != nil {
			return fmt.Errorf("complete run: %w", err)
		}

		plan, err := PlanCompletion(
			run,
			confirmedIDs,
			attendedIDs,
			noShowIDs,
			extraIDs,
			guestNames,
		)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE runs
			SET is_completed = true, completed_at = $2, completed_by = $3,
			    final_confirmed_count = $4, final_cost_cents = $5
			WHERE id = $1 AND is_completed = false`,
			runID,
			plan.CompletedAt,
			actorID,
			plan.FinalConfirmedCount,
			plan.FinalCostCents,
		)
		if err != nil {
			return fmt.Errorf("complete run: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete run: %w", err)
		}
		if rows == 0 {
			return core.ConflictError("run is already completed")
		}

		extras := make(map[string]struct{}, len(plan.ExtraIDs))
		for _, id := range plan.ExtraIDs {
			extras[id] = struct{}{}
		}

		for _, userID := range plan.AttendedIDs {
			_, isExtra := extras[userID]
			if err := markAttendanceTx(ctx, tx, runID, userID, true, false, isExtra); err != nil {
				return err
			}
		}

		for _, userID := range plan.NoShowIDs {
			if err := markAttendanceTx(ctx, tx, runID, userID, false, true, false); err != nil {
				return err
			}
		}

		for _, name := range plan.GuestNames {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO run_guests (id, run_id, name)
				VALUES ($1, $2, $3)`, uuid.New().String(), runID, name)
			if err != nil {
				return fmt.Errorf("complete run: add guest: %w", err)
			}
		}

		if err := bumpCounterTx(ctx, tx, "runs_attended_count", plan.AttendedIDs); err != nil {
			return err
		}
		if err := bumpCounterTx(ctx, tx, "no_shows_count", plan.NoShowIDs); err != nil {
			return err
		}

		return nil
	})
}

func (r *repository) CreateWithParticipants(
	ctx context.Context,
	run *Run,
	statusByUserID map[string]string,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO runs (
				id, title, date, start_time, end_time, location_id,
				description, capacity, cost_cents, is_variable_cost,
				total_cost_cents, created_by, is_historical
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
			)
			RETURNING created_at`

		err := tx.GetContext(ctx, &run.CreatedAt, query,
			run.ID,
			run.Title,
			run.Date,
			run.StartTime,
			run.EndTime,
			run.LocationID,
			run.Description,
			run.Capacity,
			run.CostCents,
			run.IsVariableCost,
			run.TotalCostCents,
			run.CreatedBy,
			run.IsHistorical,
		)
		if err != nil {
			return fmt.Errorf("import run: %w", err)
		}

		for userID, status := range statusByUserID {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO run_participants (id, run_id, user_id, status)
				VALUES ($1, $2, $3, $4)`,
				uuid.New().String(), run.ID, userID, status)
			if err != nil {
				return fmt.Errorf("import run: add participant: %w", err)
			}
		}

		return nil
	})
}

func lockRun(ctx context.Context, tx *sqlx.Tx, id string) (*Run, error) {
	query := `
		SELECT
			id, title, date, start_time, end_time, location_id, description,
			capacity, cost_cents, is_variable_cost, total_cost_cents,
			created_by, created_at, is_historical, is_completed,
			completed_at, completed_by, final_confirmed_count,
			final_cost_cents
		FROM runs
		WHERE id = $1
		FOR UPDATE`

	var run Run
	err := tx.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

func confirmedCountTx(
	ctx context.Context,
	tx *sqlx.Tx,
	runID string,
) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM run_participants
		WHERE run_id = $1 AND status = $2`, runID, StatusConfirmed)
	return count, err
}

func currentStatusTx(
	ctx context.Context,
	tx *sqlx.Tx,
	runID, userID string,
) (string, error) {
	var status string
	err := tx.GetContext(ctx, &status, `
		SELECT status FROM run_participants
		WHERE run_id = $1 AND user_id = $2`, runID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

func markAttendanceTx(
	ctx context.Context,
	tx *sqlx.Tx,
	runID, userID string,
	attended, noShow, isExtra bool,
) error {
	// Extras keep no prior status row; they land as confirmed but flagged,
	// and were never subject to the capacity check.
	query := `
		INSERT INTO run_participants (
			id, run_id, user_id, status, attended, no_show, is_extra
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, user_id)
		DO UPDATE SET attended = EXCLUDED.attended,
		              no_show = EXCLUDED.no_show,
		              is_extra = EXCLUDED.is_extra,
		              updated_at = NOW()`

	_, err := tx.ExecContext(ctx, query,
		uuid.New().String(), runID, userID, StatusConfirmed,
		attended, noShow, isExtra,
	)
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}

	return nil
}

func bumpCounterTx(
	ctx context.Context,
	tx *sqlx.Tx,
	column string,
	userIDs []string,
) error {
	if len(userIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`
		UPDATE users SET %s = %s + 1
		WHERE id IN (?)`, column, column), userIDs)
	if err != nil {
		return fmt.Errorf("bump %s: %w", column, err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("bump %s: %w", column, err)
	}

	return nil
}

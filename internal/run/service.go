// AngelaMos | 2026
// service.go

package run

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

// UserLookup resolves usernames during historical imports. Implemented by
// the user service.
type UserLookup interface {
	IDByUsername(ctx context.Context, username string) (string, error)
}

type Service struct {
	repo               Repository
	users              UserLookup
	revealMinConfirmed int
}

func NewService(
	repo Repository,
	users UserLookup,
	revealMinConfirmed int,
) *Service {
	return &Service{
		repo:               repo,
		users:              users,
		revealMinConfirmed: revealMinConfirmed,
	}
}

// revealMin is zero for admins so the per-person figure is never
// suppressed for them.
func (s *Service) revealMin(admin bool) int {
	if admin {
		return 0
	}
	return s.revealMinConfirmed
}

func (s *Service) List(
	ctx context.Context,
	viewerID string,
	admin bool,
) (*RunListResponse, error) {
	runs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses, err := s.hydrate(ctx, runs, viewerID, admin)
	if err != nil {
		return nil, err
	}

	return &RunListResponse{Runs: responses}, nil
}

func (s *Service) Get(
	ctx context.Context,
	id, viewerID string,
	admin bool,
) (*RunResponse, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	responses, err := s.hydrate(ctx, []Run{*r}, viewerID, admin)
	if err != nil {
		return nil, err
	}

	return &responses[0], nil
}

func (s *Service) Create(
	ctx context.Context,
	actorID string,
	req *CreateRunRequest,
) (*RunResponse, error) {
	if fields := ValidateFields(req.fields()); len(fields) > 0 {
		return nil, core.ValidationError("invalid run", fields)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, core.ValidationError("invalid run", map[string]string{
			"date": "date must be formatted YYYY-MM-DD",
		})
	}

	r := &Run{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		LocationID:     req.LocationID,
		Description:    req.Description,
		Capacity:       req.Capacity,
		CostCents:      req.CostCents,
		IsVariableCost: req.IsVariableCost,
		TotalCostCents: req.TotalCostCents,
		CreatedBy:      actorID,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	return s.Get(ctx, r.ID, actorID, true)
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req *UpdateRunRequest,
) (*RunResponse, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.IsCompleted {
		return nil, core.ConflictError("completed runs cannot be edited")
	}

	if req.Date != nil {
		if _, err := time.Parse(dateLayout, *req.Date); err != nil {
			return nil, core.ValidationError("invalid run", map[string]string{
				"date": "date must be formatted YYYY-MM-DD",
			})
		}
	}

	applyUpdate(r, req)

	merged := Fields{
		Title:          r.Title,
		Date:           r.Date.Format(dateLayout),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		LocationID:     r.LocationID,
		Capacity:       r.Capacity,
		CostCents:      r.CostCents,
		IsVariableCost: r.IsVariableCost,
		TotalCostCents: r.TotalCostCents,
	}
	if fields := ValidateFields(merged); len(fields) > 0 {
		return nil, core.ValidationError("invalid run", fields)
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	return s.Get(ctx, id, "", true)
}

func applyUpdate(r *Run, req *UpdateRunRequest) {
	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Date != nil {
		if parsed, err := time.Parse(dateLayout, *req.Date); err == nil {
			r.Date = parsed
		}
	}
	if req.StartTime != nil {
		r.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		r.EndTime = *req.EndTime
	}
	if req.LocationID != nil {
		r.LocationID = *req.LocationID
	}
	if req.Description != nil {
		r.Description = req.Description
	}
	if req.Capacity != nil {
		r.Capacity = req.Capacity
	}
	if req.IsVariableCost != nil {
		r.IsVariableCost = *req.IsVariableCost
	}
	if req.CostCents != nil {
		r.CostCents = req.CostCents
	}
	if req.TotalCostCents != nil {
		r.TotalCostCents = req.TotalCostCents
	}

	// Switching cost mode clears the other mode's field so the merged
	// result stays in exactly one mode.
	if req.IsVariableCost != nil {
		if *req.IsVariableCost {
			r.CostCents = nil
		} else {
			r.TotalCostCents = nil
		}
	}
}

func (s *Service) Delete(ctx context.Context, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if r.IsCompleted {
		return core.ConflictError("completed runs cannot be deleted")
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) SetRSVP(
	ctx context.Context,
	runID, userID, status string,
	override bool,
) (*RunResponse, error) {
	if err := s.repo.SetRSVP(ctx, runID, userID, status, override); err != nil {
		return nil, err
	}

	return s.Get(ctx, runID, userID, override)
}

func (s *Service) RemoveRSVP(
	ctx context.Context,
	runID, userID string,
) (*RunResponse, error) {
	if err := s.repo.RemoveRSVP(ctx, runID, userID); err != nil {
		return nil, err
	}

	return s.Get(ctx, runID, userID, false)
}

func (s *Service) Complete(
	ctx context.Context,
	runID, actorID string,
	req *CompleteRunRequest,
) (*RunResponse, error) {
	err := s.repo.Complete(
		ctx,
		runID,
		actorID,
		req.AttendedUserIDs,
		req.NoShowUserIDs,
		req.ExtraAttendeeUserIDs,
		req.GuestNames,
	)
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, runID, actorID, true)
}

// MyRuns splits the viewer's runs into upcoming and history. Completed
// runs and past dates are history regardless of RSVP state.
func (s *Service) MyRuns(
	ctx context.Context,
	userID string,
) (*MyRunsResponse, error) {
	runs, statuses, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses, err := s.hydrate(ctx, runs, userID, false)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	out := &MyRunsResponse{
		Upcoming: []RunResponse{},
		History:  []RunResponse{},
	}
	for i := range responses {
		resp := responses[i]
		if status, ok := statuses[resp.ID]; ok {
			resp.UserStatus = &status
		}

		if runs[i].IsCompleted || runs[i].Date.Before(today) {
			out.History = append(out.History, resp)
		} else {
			out.Upcoming = append(out.Upcoming, resp)
		}
	}

	return out, nil
}

// Import loads historical runs in bulk. Failures are collected per run
// and per participant rather than aborting the batch.
func (s *Service) Import(
	ctx context.Context,
	actorID string,
	req *ImportRunsRequest,
) (*ImportRunsResponse, error) {
	resp := &ImportRunsResponse{Errors: []string{}}

	for i, imported := range req.Runs {
		date, err := time.Parse(dateLayout, imported.Date)
		if err != nil {
			resp.Errors = append(resp.Errors,
				fmt.Sprintf("run %d: invalid date %q", i, imported.Date))
			continue
		}

		statusByUserID, userErrs := s.resolveImportParticipants(
			ctx, i, imported.Participants,
		)
		resp.Errors = append(resp.Errors, userErrs...)

		costCents := imported.CostCents
		if costCents == nil {
			var zero int64
			costCents = &zero
		}

		r := &Run{
			ID:           uuid.New().String(),
			Title:        imported.Title,
			Date:         date,
			StartTime:    imported.StartTime,
			EndTime:      imported.EndTime,
			LocationID:   imported.LocationID,
			Description:  imported.Description,
			Capacity:     imported.Capacity,
			CostCents:    costCents,
			CreatedBy:    actorID,
			IsHistorical: true,
		}

		if err := s.repo.CreateWithParticipants(ctx, r, statusByUserID); err != nil {
			resp.Errors = append(resp.Errors,
				fmt.Sprintf("run %d: %v", i, err))
			continue
		}

		resp.ImportedCount++
	}

	return resp, nil
}

func (s *Service) resolveImportParticipants(
	ctx context.Context,
	runIndex int,
	participants ImportParticipants,
) (map[string]string, []string) {
	statusByUserID := make(map[string]string)
	var errs []string

	resolve := func(usernames []string, status string) {
		for _, username := range usernames {
			id, err := s.users.IDByUsername(ctx, username)
			if err != nil {
				errs = append(errs,
					fmt.Sprintf("run %d: unknown username %q", runIndex, username))
				continue
			}
			statusByUserID[id] = status
		}
	}

	resolve(participants.Confirmed, StatusConfirmed)
	resolve(participants.Interested, StatusInterested)
	resolve(participants.Out, StatusOut)

	return statusByUserID, errs
}

func (s *Service) hydrate(
	ctx context.Context,
	runs []Run,
	viewerID string,
	admin bool,
) ([]RunResponse, error) {
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}

	participants, err := s.repo.ParticipantsByRun(ctx, ids)
	if err != nil {
		return nil, err
	}

	guests, err := s.repo.GuestsByRun(ctx, ids)
	if err != nil {
		return nil, err
	}

	revealMin := s.revealMin(admin)

	responses := make([]RunResponse, 0, len(runs))
	for i := range runs {
		r := &runs[i]
		resp := buildResponse(r, participants[r.ID], guests[r.ID], revealMin)

		if viewerID != "" {
			for _, p := range participants[r.ID] {
				if p.UserID == viewerID {
					status := p.Status
					resp.UserStatus = &status
					break
				}
			}
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

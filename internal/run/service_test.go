// AngelaMos | 2026
// service_test.go

package run

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type fakeRepo struct {
	runs         map[string]*Run
	participants map[string][]Participant
	guests       map[string][]Guest
	statuses     map[string]map[string]string
	imported     []*Run
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		runs:         map[string]*Run{},
		participants: map[string][]Participant{},
		guests:       map[string][]Guest{},
		statuses:     map[string]map[string]string{},
	}
}

func (f *fakeRepo) Create(_ context.Context, run *Run) error {
	run.CreatedAt = time.Now()
	copied := *run
	f.runs[run.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Run, error) {
	r, ok := f.runs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepo) Update(_ context.Context, run *Run) error {
	existing, ok := f.runs[run.ID]
	if !ok {
		return core.ErrNotFound
	}
	if existing.IsCompleted {
		return core.ConflictError("completed runs cannot be edited")
	}
	copied := *run
	f.runs[run.ID] = &copied
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	delete(f.runs, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]Run, error) {
	out := make([]Run, 0, len(f.runs))
	for _, r := range f.runs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) ListForUser(
	_ context.Context,
	userID string,
) ([]Run, map[string]string, error) {
	var out []Run
	statuses := map[string]string{}
	for id, r := range f.runs {
		if status, ok := f.statuses[id][userID]; ok {
			out = append(out, *r)
			statuses[id] = status
		}
	}
	return out, statuses, nil
}

func (f *fakeRepo) ParticipantsByRun(
	_ context.Context,
	runIDs []string,
) (map[string][]Participant, error) {
	out := map[string][]Participant{}
	for _, id := range runIDs {
		out[id] = f.participants[id]
	}
	return out, nil
}

func (f *fakeRepo) GuestsByRun(
	_ context.Context,
	runIDs []string,
) (map[string][]Guest, error) {
	out := map[string][]Guest{}
	for _, id := range runIDs {
		out[id] = f.guests[id]
	}
	return out, nil
}

func (f *fakeRepo) SetRSVP(
	_ context.Context,
	runID, userID, status string,
	override bool,
) error {
	r, ok := f.runs[runID]
	if !ok {
		return core.ErrNotFound
	}

	current := f.statuses[runID][userID]
	confirmed := 0
	for _, s := range f.statuses[runID] {
		if s == StatusConfirmed {
			confirmed++
		}
	}

	if err := CheckRSVP(r, confirmed, current, status, override); err != nil {
		return err
	}

	if f.statuses[runID] == nil {
		f.statuses[runID] = map[string]string{}
	}
	f.statuses[runID][userID] = status
	return nil
}

func (f *fakeRepo) RemoveRSVP(_ context.Context, runID, userID string) error {
	delete(f.statuses[runID], userID)
	return nil
}

func (f *fakeRepo) Complete(
	_ context.Context,
	runID, actorID string,
	attendedIDs, noShowIDs, extraIDs, guestNames []string,
) error {
	r, ok := f.runs[runID]
	if !ok {
		return core.ErrNotFound
	}

	var confirmedIDs []string
	for userID, status := range f.statuses[runID] {
		if status == StatusConfirmed {
			confirmedIDs = append(confirmedIDs, userID)
		}
	}

	plan, err := PlanCompletion(r, confirmedIDs, attendedIDs, noShowIDs, extraIDs, guestNames)
	if err != nil {
		return err
	}

	r.IsCompleted = true
	r.CompletedAt = &plan.CompletedAt
	r.CompletedBy = &actorID
	r.FinalConfirmedCount = &plan.FinalConfirmedCount
	r.FinalCostCents = plan.FinalCostCents
	return nil
}

func (f *fakeRepo) CreateWithParticipants(
	_ context.Context,
	run *Run,
	statusByUserID map[string]string,
) error {
	copied := *run
	f.runs[run.ID] = &copied
	f.imported = append(f.imported, &copied)
	f.statuses[run.ID] = statusByUserID
	return nil
}

type fakeUserLookup map[string]string

func (f fakeUserLookup) IDByUsername(
	_ context.Context,
	username string,
) (string, error) {
	id, ok := f[username]
	if !ok {
		return "", core.ErrNotFound
	}
	return id, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, fakeUserLookup{"mike": "u-mike", "dana": "u-dana"}, 10)
}

func validCreateRequest() *CreateRunRequest {
	return &CreateRunRequest{
		Title:      "Sunday Run",
		Date:       "2026-09-06",
		StartTime:  "18:00",
		EndTime:    "20:00",
		LocationID: "9b2e7c1a-0000-0000-0000-000000000001",
		Capacity:   intPtr(10),
		CostCents:  int64Ptr(500),
	}
}

func TestServiceCreateValid(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), "admin-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Title != "Sunday Run" || resp.CreatedBy != "admin-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.CostCents == nil || *resp.CostCents != 500 {
		t.Fatalf("cost = %v, want 500", resp.CostCents)
	}
	if len(repo.runs) != 1 {
		t.Fatalf("expected stored run, got %d", len(repo.runs))
	}
}

func TestServiceCreateInvalid(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	req := validCreateRequest()
	req.Title = ""
	req.EndTime = "17:00"

	_, err := svc.Create(context.Background(), "admin-1", req)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var appErr *core.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if _, ok := appErr.Fields["title"]; !ok {
		t.Fatalf("expected title in fields, got %v", appErr.Fields)
	}
	if _, ok := appErr.Fields["start_time"]; !ok {
		t.Fatalf("expected start_time in fields, got %v", appErr.Fields)
	}

	if len(repo.runs) != 0 {
		t.Fatal("invalid run must not be stored")
	}
}

func TestServiceUpdateCompletedConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), "admin-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.runs[resp.ID].IsCompleted = true

	title := "Moved"
	_, err = svc.Update(context.Background(), resp.ID, &UpdateRunRequest{Title: &title})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceDeleteCompletedConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), "admin-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.runs[resp.ID].IsCompleted = true

	err = svc.Delete(context.Background(), resp.ID)
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, ok := repo.runs[resp.ID]; !ok {
		t.Fatal("completed run was deleted")
	}
}

func TestServiceDeleteOpenRun(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), "admin-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), resp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.runs[resp.ID]; ok {
		t.Fatal("run still present after delete")
	}
}

func TestServiceUpdateMergedValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), "admin-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Flipping to variable cost without a total leaves the merged run in
	// no valid cost mode.
	variable := true
	_, err = svc.Update(context.Background(), resp.ID, &UpdateRunRequest{
		IsVariableCost: &variable,
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}

	total := int64(4000)
	updated, err := svc.Update(context.Background(), resp.ID, &UpdateRunRequest{
		IsVariableCost: &variable,
		TotalCostCents: &total,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsVariableCost {
		t.Fatal("expected variable cost mode")
	}
}

func TestServiceCostHiddenUnderThreshold(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	req := validCreateRequest()
	req.CostCents = nil
	req.IsVariableCost = true
	req.TotalCostCents = int64Ptr(10000)

	created, err := svc.Create(context.Background(), "admin-1", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.participants[created.ID] = []Participant{
		{RunID: created.ID, UserID: "a", Status: StatusConfirmed, Username: "a"},
		{RunID: created.ID, UserID: "b", Status: StatusConfirmed, Username: "b"},
	}

	// Member view: two confirmed, threshold ten, figure suppressed.
	got, err := svc.Get(context.Background(), created.ID, "a", false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CostHidden || got.CostCents != nil {
		t.Fatalf("expected hidden cost, got hidden=%v cost=%v", got.CostHidden, got.CostCents)
	}
	if got.UserStatus == nil || *got.UserStatus != StatusConfirmed {
		t.Fatalf("viewer status = %v, want confirmed", got.UserStatus)
	}

	// Admin view: never suppressed.
	adminView, err := svc.Get(context.Background(), created.ID, "", true)
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if adminView.CostHidden || adminView.CostCents == nil || *adminView.CostCents != 5000 {
		t.Fatalf("admin cost = %v hidden=%v, want 5000", adminView.CostCents, adminView.CostHidden)
	}
}

func TestServiceMyRunsSplit(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	mk := func(id string, date time.Time, completed bool) {
		repo.runs[id] = &Run{
			ID:        id,
			Title:     id,
			Date:      date,
			StartTime: "18:00",
			EndTime:   "20:00",

			CostCents:   int64Ptr(0),
			IsCompleted: completed,
		}
		repo.statuses[id] = map[string]string{"u1": StatusConfirmed}
	}

	future := time.Now().UTC().AddDate(0, 0, 7)
	past := time.Now().UTC().AddDate(0, 0, -7)

	mk("upcoming", future, false)
	mk("past", past, false)
	mk("done", future, true)

	resp, err := svc.MyRuns(context.Background(), "u1")
	if err != nil {
		t.Fatalf("my runs: %v", err)
	}

	if len(resp.Upcoming) != 1 || resp.Upcoming[0].ID != "upcoming" {
		t.Fatalf("upcoming = %+v", resp.Upcoming)
	}
	if len(resp.History) != 2 {
		t.Fatalf("history = %+v", resp.History)
	}
	for _, r := range resp.History {
		if r.UserStatus == nil || *r.UserStatus != StatusConfirmed {
			t.Fatalf("missing user status on %s", r.ID)
		}
	}
}

func TestServiceImportCollectsErrors(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	req := &ImportRunsRequest{Runs: []ImportedRun{
		{
			Title:      "Legacy Run",
			Date:       "2024-01-07",
			StartTime:  "18:00",
			EndTime:    "20:00",
			LocationID: "9b2e7c1a-0000-0000-0000-000000000001",
			Participants: ImportParticipants{
				Confirmed: []string{"mike", "ghost"},
				Out:       []string{"dana"},
			},
		},
		{
			Title:      "Bad Date",
			Date:       "01/07/2024",
			StartTime:  "18:00",
			EndTime:    "20:00",
			LocationID: "9b2e7c1a-0000-0000-0000-000000000001",
		},
	}}

	resp, err := svc.Import(context.Background(), "admin-1", req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if resp.ImportedCount != 1 {
		t.Fatalf("imported = %d, want 1", resp.ImportedCount)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("errors = %v, want unknown username + bad date", resp.Errors)
	}

	if len(repo.imported) != 1 || !repo.imported[0].IsHistorical {
		t.Fatalf("expected one historical run, got %+v", repo.imported)
	}

	statuses := repo.statuses[repo.imported[0].ID]
	if statuses["u-mike"] != StatusConfirmed || statuses["u-dana"] != StatusOut {
		t.Fatalf("participant statuses = %v", statuses)
	}
}

func TestServiceRSVPCapacitySequence(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	req := validCreateRequest()
	req.Capacity = intPtr(2)
	created, err := svc.Create(context.Background(), "admin-1", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx := context.Background()
	if _, err := svc.SetRSVP(ctx, created.ID, "a", StatusConfirmed, false); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := svc.SetRSVP(ctx, created.ID, "b", StatusConfirmed, false); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	_, err = svc.SetRSVP(ctx, created.ID, "c", StatusConfirmed, false)
	if !errors.Is(err, core.ErrCapacity) {
		t.Fatalf("third confirm should hit capacity, got %v", err)
	}

	// c can still mark interested, and the admin override can exceed
	// the cap.
	if _, err := svc.SetRSVP(ctx, created.ID, "c", StatusInterested, false); err != nil {
		t.Fatalf("interested: %v", err)
	}
	if _, err := svc.SetRSVP(ctx, created.ID, "c", StatusConfirmed, true); err != nil {
		t.Fatalf("override confirm: %v", err)
	}

	// Backing out is always allowed on an open run, even at capacity.
	if _, err := svc.RemoveRSVP(ctx, created.ID, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
}

// AngelaMos | 2026
// rules_test.go

package run

import (
	"errors"
	"testing"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func validFields() Fields {
	return Fields{
		Title:      "Sunday Run",
		Date:       "2026-09-06",
		StartTime:  "18:00",
		EndTime:    "20:00",
		LocationID: "9b2e7c1a-0000-0000-0000-000000000001",
		Capacity:   intPtr(10),
		CostCents:  int64Ptr(500),
	}
}

func TestValidateFieldsOK(t *testing.T) {
	if fields := ValidateFields(validFields()); len(fields) != 0 {
		t.Fatalf("expected no violations, got %v", fields)
	}
}

func TestValidateFieldsCollectsAllViolations(t *testing.T) {
	f := Fields{
		Date:      "06/09/2026",
		StartTime: "20:00",
		EndTime:   "18:00",
		Capacity:  intPtr(0),
	}

	fields := ValidateFields(f)

	for _, key := range []string{"title", "date", "start_time", "location_id", "capacity", "cost_cents"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected violation for %q, got %v", key, fields)
		}
	}
}

func TestValidateFieldsStartMustPrecedeEnd(t *testing.T) {
	f := validFields()
	f.StartTime = "20:00"
	f.EndTime = "20:00"

	fields := ValidateFields(f)
	if _, ok := fields["start_time"]; !ok {
		t.Fatalf("expected start_time violation, got %v", fields)
	}
}

func TestValidateFieldsCostModeExclusive(t *testing.T) {
	f := validFields()
	f.IsVariableCost = true
	f.TotalCostCents = int64Ptr(4000)
	// cost_cents still set from validFields

	fields := ValidateFields(f)
	if _, ok := fields["cost_cents"]; !ok {
		t.Fatalf("expected cost_cents violation for dual cost mode, got %v", fields)
	}

	f = validFields()
	f.IsVariableCost = true
	f.CostCents = nil

	fields = ValidateFields(f)
	if _, ok := fields["total_cost_cents"]; !ok {
		t.Fatalf("expected total_cost_cents required, got %v", fields)
	}
}

func TestCheckRSVPCapacity(t *testing.T) {
	r := &Run{Capacity: intPtr(2)}

	// Two confirmed, a third tries to confirm.
	err := CheckRSVP(r, 2, "", StatusConfirmed, false)
	if !errors.Is(err, core.ErrCapacity) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	// The same user moving interested -> out is fine at capacity.
	if err := CheckRSVP(r, 2, StatusInterested, StatusOut, false); err != nil {
		t.Fatalf("non-confirm transition should pass: %v", err)
	}

	// Already confirmed user re-sending confirmed is not a new slot.
	if err := CheckRSVP(r, 2, StatusConfirmed, StatusConfirmed, false); err != nil {
		t.Fatalf("re-confirm should pass: %v", err)
	}

	// Admin override waives the capacity limit.
	if err := CheckRSVP(r, 2, "", StatusConfirmed, true); err != nil {
		t.Fatalf("override should pass: %v", err)
	}
}

func TestCheckRSVPUncappedRun(t *testing.T) {
	r := &Run{}

	if err := CheckRSVP(r, 50, "", StatusConfirmed, false); err != nil {
		t.Fatalf("uncapped run should accept confirms: %v", err)
	}
}

func TestCheckRSVPCompletedRunLocked(t *testing.T) {
	r := &Run{IsCompleted: true, Capacity: intPtr(10)}

	err := CheckRSVP(r, 0, "", StatusConfirmed, false)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Even the override cannot reopen a completed run.
	err = CheckRSVP(r, 0, "", StatusConfirmed, true)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected forbidden for override, got %v", err)
	}
}

func TestCheckRSVPInvalidStatus(t *testing.T) {
	err := CheckRSVP(&Run{}, 0, "", "maybe", false)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlanCompletionRejectsSecondRun(t *testing.T) {
	r := &Run{IsCompleted: true}

	_, err := PlanCompletion(r, nil, nil, nil, nil, nil)
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPlanCompletionDisjointSets(t *testing.T) {
	r := &Run{CostCents: int64Ptr(500)}

	_, err := PlanCompletion(r,
		[]string{"a", "b"},
		[]string{"a"},
		[]string{"a"},
		nil, nil,
	)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error for overlap, got %v", err)
	}
}

func TestPlanCompletionExtrasOutsideConfirmed(t *testing.T) {
	r := &Run{CostCents: int64Ptr(500)}

	plan, err := PlanCompletion(r,
		[]string{"a", "b"},
		[]string{"a", "c"},
		[]string{"b"},
		[]string{"d"},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.AttendedIDs) != 3 {
		t.Fatalf("expected 3 attended, got %v", plan.AttendedIDs)
	}

	extras := map[string]bool{}
	for _, id := range plan.ExtraIDs {
		extras[id] = true
	}
	if !extras["c"] || !extras["d"] || extras["a"] {
		t.Fatalf("unexpected extras %v", plan.ExtraIDs)
	}

	if plan.FinalConfirmedCount != 2 {
		t.Fatalf("final confirmed = %d, want 2", plan.FinalConfirmedCount)
	}
}

func TestPlanCompletionGuestDedup(t *testing.T) {
	r := &Run{CostCents: int64Ptr(0)}

	plan, err := PlanCompletion(r, nil, nil, nil, nil,
		[]string{"Mike", " mike ", "MIKE", "Dana", ""},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.GuestNames) != 2 {
		t.Fatalf("expected 2 guests, got %v", plan.GuestNames)
	}

	if len(plan.AttendedIDs) != 0 {
		t.Fatalf("expected no account-backed attendees, got %v", plan.AttendedIDs)
	}
}

func TestPlanCompletionFreezesVariableCost(t *testing.T) {
	r := &Run{
		IsVariableCost: true,
		TotalCostCents: int64Ptr(10000),
	}

	confirmed := []string{"a", "b", "c"}
	plan, err := PlanCompletion(r, confirmed, confirmed, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.FinalCostCents == nil || *plan.FinalCostCents != 3333 {
		t.Fatalf("frozen cost = %v, want 3333", plan.FinalCostCents)
	}
}

func TestEffectiveCostPerPerson(t *testing.T) {
	fixed := &Run{CostCents: int64Ptr(700)}
	if got := fixed.EffectiveCostPerPersonCents(25); got == nil || *got != 700 {
		t.Fatalf("fixed cost = %v, want 700", got)
	}

	variable := &Run{IsVariableCost: true, TotalCostCents: int64Ptr(1000)}
	if got := variable.EffectiveCostPerPersonCents(3); got == nil || *got != 333 {
		t.Fatalf("split cost = %v, want 333", got)
	}
	if got := variable.EffectiveCostPerPersonCents(0); got == nil || *got != 1000 {
		t.Fatalf("zero confirmed should divide by 1, got %v", got)
	}

	frozen := &Run{
		IsVariableCost: true,
		IsCompleted:    true,
		TotalCostCents: int64Ptr(1000),
		FinalCostCents: int64Ptr(250),
	}
	// Confirmed count no longer matters once frozen.
	if got := frozen.EffectiveCostPerPersonCents(99); got == nil || *got != 250 {
		t.Fatalf("frozen cost = %v, want 250", got)
	}
}

func TestCostHidden(t *testing.T) {
	variable := &Run{IsVariableCost: true}

	if !variable.CostHidden(4, 10) {
		t.Fatal("expected hidden under threshold")
	}
	if variable.CostHidden(10, 10) {
		t.Fatal("expected visible at threshold")
	}

	variable.IsCompleted = true
	if variable.CostHidden(0, 10) {
		t.Fatal("completed run never hides cost")
	}

	fixed := &Run{CostCents: int64Ptr(500)}
	if fixed.CostHidden(0, 10) {
		t.Fatal("fixed cost never hidden")
	}
}

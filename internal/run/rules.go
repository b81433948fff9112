// AngelaMos | 2026
// rules.go

package run

import (
	"fmt"
	"strings"
	"time"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Fields is the validatable surface of a run, independent of transport.
// Create validates the request as given; Update validates the merged
// result so a partial edit cannot leave a run in an invalid state.
type Fields struct {
	Title          string
	Date           string
	StartTime      string
	EndTime        string
	LocationID     string
	Capacity       *int
	CostCents      *int64
	IsVariableCost bool
	TotalCostCents *int64
}

// ValidateFields returns every violated field, not just the first.
func ValidateFields(f Fields) map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(f.Title) == "" {
		fields["title"] = "title is required"
	}

	if f.Date == "" {
		fields["date"] = "date is required"
	} else if _, err := time.Parse(dateLayout, f.Date); err != nil {
		fields["date"] = "date must be formatted YYYY-MM-DD"
	}

	startOK := validTimeOfDay(f.StartTime, "start_time", fields)
	endOK := validTimeOfDay(f.EndTime, "end_time", fields)
	if startOK && endOK && f.StartTime >= f.EndTime {
		fields["start_time"] = "start_time must be before end_time"
	}

	if f.LocationID == "" {
		fields["location_id"] = "location_id is required"
	}

	if f.Capacity != nil && *f.Capacity <= 0 {
		fields["capacity"] = "capacity must be a positive integer"
	}

	validateCostMode(f, fields)

	return fields
}

func validTimeOfDay(v, field string, fields map[string]string) bool {
	if v == "" {
		fields[field] = field + " is required"
		return false
	}
	if _, err := time.Parse(timeLayout, v); err != nil {
		fields[field] = field + " must be formatted HH:MM"
		return false
	}
	return true
}

// Exactly one cost mode: a fixed per-person price, or a total split across
// the confirmed roster at completion.
func validateCostMode(f Fields, fields map[string]string) {
	if f.IsVariableCost {
		if f.CostCents != nil {
			fields["cost_cents"] = "fixed cost cannot be set on a variable-cost run"
		}
		if f.TotalCostCents == nil {
			fields["total_cost_cents"] = "total_cost_cents is required for variable-cost runs"
		} else if *f.TotalCostCents < 0 {
			fields["total_cost_cents"] = "total_cost_cents must not be negative"
		}
		return
	}

	if f.TotalCostCents != nil {
		fields["total_cost_cents"] = "total_cost_cents is only valid on variable-cost runs"
	}
	if f.CostCents == nil {
		fields["cost_cents"] = "cost_cents is required for fixed-cost runs"
	} else if *f.CostCents < 0 {
		fields["cost_cents"] = "cost_cents must not be negative"
	}
}

// CheckRSVP decides whether a (user, run) pair may move to newStatus.
// currentStatus is "" when the user has no RSVP row. The caller must hold
// the run's serialization point (row lock) so confirmedCount cannot move
// between this check and the write. override waives the capacity limit
// but never the completed-run lock.
func CheckRSVP(
	r *Run,
	confirmedCount int,
	currentStatus, newStatus string,
	override bool,
) error {
	if !ValidStatus(newStatus) {
		return core.ValidationError(
			"status must be confirmed, interested, or out",
			map[string]string{"status": "invalid status " + newStatus},
		)
	}

	if r.IsCompleted {
		return core.ForbiddenError("run is completed and locked")
	}

	if !override &&
		newStatus == StatusConfirmed &&
		currentStatus != StatusConfirmed &&
		r.Capacity != nil &&
		confirmedCount >= *r.Capacity {
		return core.CapacityError(
			fmt.Sprintf("run is full (%d confirmed)", confirmedCount),
		)
	}

	return nil
}

// CompletionPlan is the reconciliation computed by PlanCompletion, applied
// atomically by the repository.
type CompletionPlan struct {
	AttendedIDs []string
	NoShowIDs   []string
	ExtraIDs    []string
	GuestNames  []string

	FinalConfirmedCount int
	FinalCostCents      *int64
	CompletedAt         time.Time
}

// PlanCompletion computes the one-way open → completed transition.
// Attended and no-show sets must be disjoint. IDs outside the confirmed
// roster are not an error; they become extra attendees. Guest names are
// deduplicated within the call.
func PlanCompletion(
	r *Run,
	confirmedIDs []string,
	attendedIDs, noShowIDs, extraIDs []string,
	guestNames []string,
) (*CompletionPlan, error) {
	if r.IsCompleted {
		return nil, core.ConflictError("run is already completed")
	}

	attended := dedupe(append(append([]string{}, attendedIDs...), extraIDs...))
	noShows := dedupe(noShowIDs)

	noShowSet := make(map[string]struct{}, len(noShows))
	for _, id := range noShows {
		noShowSet[id] = struct{}{}
	}

	for _, id := range attended {
		if _, ok := noShowSet[id]; ok {
			return nil, core.ValidationError(
				"a user cannot be both attended and no-show",
				map[string]string{"no_show_user_ids": "user " + id + " is also marked attended"},
			)
		}
	}

	confirmed := make(map[string]struct{}, len(confirmedIDs))
	for _, id := range confirmedIDs {
		confirmed[id] = struct{}{}
	}

	var extras []string
	for _, id := range attended {
		if _, ok := confirmed[id]; !ok {
			extras = append(extras, id)
		}
	}

	finalConfirmed := len(confirmedIDs)

	plan := &CompletionPlan{
		AttendedIDs:         attended,
		NoShowIDs:           noShows,
		ExtraIDs:            extras,
		GuestNames:          dedupeGuests(guestNames),
		FinalConfirmedCount: finalConfirmed,
		FinalCostCents:      r.EffectiveCostPerPersonCents(finalConfirmed),
		CompletedAt:         time.Now().UTC(),
	}

	return plan, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func dedupeGuests(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// AngelaMos | 2026
// entity.go

package run

import (
	"math"
	"time"
)

const (
	StatusConfirmed  = "confirmed"
	StatusInterested = "interested"
	StatusOut        = "out"
)

// ValidStatus reports whether s is one of the three RSVP states. The
// fourth state, absent, is the lack of a participant row.
func ValidStatus(s string) bool {
	return s == StatusConfirmed || s == StatusInterested || s == StatusOut
}

type Run struct {
	ID                  string     `db:"id"`
	Title               string     `db:"title"`
	Date                time.Time  `db:"date"`
	StartTime           string     `db:"start_time"`
	EndTime             string     `db:"end_time"`
	LocationID          string     `db:"location_id"`
	LocationName        string     `db:"location_name"`
	LocationAddress     string     `db:"location_address"`
	Description         *string    `db:"description"`
	Capacity            *int       `db:"capacity"`
	CostCents           *int64     `db:"cost_cents"`
	IsVariableCost      bool       `db:"is_variable_cost"`
	TotalCostCents      *int64     `db:"total_cost_cents"`
	CreatedBy           string     `db:"created_by"`
	CreatedAt           time.Time  `db:"created_at"`
	IsHistorical        bool       `db:"is_historical"`
	IsCompleted         bool       `db:"is_completed"`
	CompletedAt         *time.Time `db:"completed_at"`
	CompletedBy         *string    `db:"completed_by"`
	FinalConfirmedCount *int       `db:"final_confirmed_count"`
	FinalCostCents      *int64     `db:"final_cost_cents"`
}

// EffectiveCostPerPersonCents returns the per-person cost. Fixed-cost runs
// return the fixed amount. Variable-cost runs divide the total by the
// confirmed count, rounded to the cent. Once a run is completed the figure
// frozen at completion time is returned regardless of confirmedCount.
func (r *Run) EffectiveCostPerPersonCents(confirmedCount int) *int64 {
	if r.IsCompleted && r.FinalCostCents != nil {
		v := *r.FinalCostCents
		return &v
	}

	if !r.IsVariableCost {
		if r.CostCents == nil {
			return nil
		}
		v := *r.CostCents
		return &v
	}

	if r.TotalCostCents == nil {
		return nil
	}

	n := confirmedCount
	if n < 1 {
		n = 1
	}

	v := int64(math.Round(float64(*r.TotalCostCents) / float64(n)))
	return &v
}

// CostHidden reports whether the per-person figure should be suppressed:
// variable-cost runs keep the number hidden until enough players confirm,
// since an early split would overstate everyone's share.
func (r *Run) CostHidden(confirmedCount, revealMinConfirmed int) bool {
	return r.IsVariableCost &&
		!r.IsCompleted &&
		confirmedCount < revealMinConfirmed
}

type Participant struct {
	ID        string    `db:"id"`
	RunID     string    `db:"run_id"`
	UserID    string    `db:"user_id"`
	Status    string    `db:"status"`
	Attended  bool      `db:"attended"`
	NoShow    bool      `db:"no_show"`
	IsExtra   bool      `db:"is_extra"`
	UpdatedAt time.Time `db:"updated_at"`

	// Display snapshot joined from users at read time, never stored.
	Username  string  `db:"username"`
	FirstName *string `db:"first_name"`
	LastName  *string `db:"last_name"`
	Badge     string  `db:"badge"`
}

type Guest struct {
	ID        string    `db:"id"`
	RunID     string    `db:"run_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// ConfirmedCount counts participants currently in the confirmed state.
func ConfirmedCount(participants []Participant) int {
	n := 0
	for _, p := range participants {
		if p.Status == StatusConfirmed {
			n++
		}
	}
	return n
}

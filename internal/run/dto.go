// AngelaMos | 2026
// dto.go

package run

import (
	"time"
)

type CreateRunRequest struct {
	Title          string  `json:"title"            validate:"required,max=200"`
	Date           string  `json:"date"             validate:"required"`
	StartTime      string  `json:"start_time"       validate:"required"`
	EndTime        string  `json:"end_time"         validate:"required"`
	LocationID     string  `json:"location_id"      validate:"required,uuid4"`
	Description    *string `json:"description,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
	CostCents      *int64  `json:"cost_cents,omitempty"`
	IsVariableCost bool    `json:"is_variable_cost"`
	TotalCostCents *int64  `json:"total_cost_cents,omitempty"`
}

func (r CreateRunRequest) fields() Fields {
	return Fields{
		Title:          r.Title,
		Date:           r.Date,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		LocationID:     r.LocationID,
		Capacity:       r.Capacity,
		CostCents:      r.CostCents,
		IsVariableCost: r.IsVariableCost,
		TotalCostCents: r.TotalCostCents,
	}
}

// UpdateRunRequest carries only the fields being changed; validation runs
// against the merged result.
type UpdateRunRequest struct {
	Title          *string `json:"title,omitempty"`
	Date           *string `json:"date,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	LocationID     *string `json:"location_id,omitempty"`
	Description    *string `json:"description,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
	CostCents      *int64  `json:"cost_cents,omitempty"`
	IsVariableCost *bool   `json:"is_variable_cost,omitempty"`
	TotalCostCents *int64  `json:"total_cost_cents,omitempty"`
}

type RSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed interested out"`
}

type AdminRSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed interested out"`
}

type CompleteRunRequest struct {
	AttendedUserIDs      []string `json:"attended_user_ids"`
	NoShowUserIDs        []string `json:"no_show_user_ids"`
	ExtraAttendeeUserIDs []string `json:"extra_attendee_user_ids"`
	GuestNames           []string `json:"guest_names"`
}

type ImportRunsRequest struct {
	Runs []ImportedRun `json:"runs" validate:"required,min=1,dive"`
}

type ImportedRun struct {
	Title        string             `json:"title"       validate:"required"`
	Date         string             `json:"date"        validate:"required"`
	StartTime    string             `json:"start_time"  validate:"required"`
	EndTime      string             `json:"end_time"    validate:"required"`
	LocationID   string             `json:"location_id" validate:"required,uuid4"`
	Description  *string            `json:"description,omitempty"`
	Capacity     *int               `json:"capacity,omitempty"`
	CostCents    *int64             `json:"cost_cents,omitempty"`
	Participants ImportParticipants `json:"participants"`
}

type ImportParticipants struct {
	Confirmed  []string `json:"confirmed"`
	Interested []string `json:"interested"`
	Out        []string `json:"out"`
}

type ImportRunsResponse struct {
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
}

type ParticipantView struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Badge     string  `json:"badge"`
	Attended  bool    `json:"attended"`
	NoShow    bool    `json:"no_show"`
	IsExtra   bool    `json:"is_extra,omitempty"`
}

type ParticipantSets struct {
	Confirmed  []ParticipantView `json:"confirmed"`
	Interested []ParticipantView `json:"interested"`
	Out        []ParticipantView `json:"out"`
	Attended   []ParticipantView `json:"attended,omitempty"`
	NoShow     []ParticipantView `json:"no_show,omitempty"`
}

type ParticipantCounts struct {
	Confirmed  int `json:"confirmed"`
	Interested int `json:"interested"`
	Out        int `json:"out"`
	Attended   int `json:"attended,omitempty"`
	NoShow     int `json:"no_show,omitempty"`
}

type RunResponse struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Date              string            `json:"date"`
	StartTime         string            `json:"start_time"`
	EndTime           string            `json:"end_time"`
	LocationID        string            `json:"location_id"`
	LocationName      string            `json:"location_name"`
	LocationAddress   string            `json:"location_address"`
	Description       *string           `json:"description,omitempty"`
	Capacity          *int              `json:"capacity,omitempty"`
	CostCents         *int64            `json:"cost_cents,omitempty"`
	CostHidden        bool              `json:"cost_hidden"`
	IsVariableCost    bool              `json:"is_variable_cost"`
	TotalCostCents    *int64            `json:"total_cost_cents,omitempty"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	IsHistorical      bool              `json:"is_historical"`
	IsCompleted       bool              `json:"is_completed"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CompletedBy       *string           `json:"completed_by,omitempty"`
	Participants      ParticipantSets   `json:"participants"`
	ParticipantCounts ParticipantCounts `json:"participant_counts"`
	GuestAttendees    []string          `json:"guest_attendees,omitempty"`
	UserStatus        *string           `json:"user_status,omitempty"`
}

type RunListResponse struct {
	Runs []RunResponse `json:"runs"`
}

type MyRunsResponse struct {
	Upcoming []RunResponse `json:"upcoming"`
	History  []RunResponse `json:"history"`
}

func toParticipantView(p Participant) ParticipantView {
	return ParticipantView{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Badge:     p.Badge,
		Attended:  p.Attended,
		NoShow:    p.NoShow,
		IsExtra:   p.IsExtra,
	}
}

// buildResponse projects a run and its participant rows into the read
// model: grouped sets, recomputed counts, effective cost with the display
// suppression flag from config.
func buildResponse(
	r *Run,
	participants []Participant,
	guests []Guest,
	revealMinConfirmed int,
) RunResponse {
	sets := ParticipantSets{
		Confirmed:  []ParticipantView{},
		Interested: []ParticipantView{},
		Out:        []ParticipantView{},
	}

	attendedCount := 0
	for _, p := range participants {
		view := toParticipantView(p)

		switch p.Status {
		case StatusConfirmed:
			sets.Confirmed = append(sets.Confirmed, view)
		case StatusInterested:
			sets.Interested = append(sets.Interested, view)
		case StatusOut:
			sets.Out = append(sets.Out, view)
		}

		if p.Attended {
			sets.Attended = append(sets.Attended, view)
			attendedCount++
		}
		if p.NoShow {
			sets.NoShow = append(sets.NoShow, view)
		}
	}

	guestNames := make([]string, 0, len(guests))
	for _, g := range guests {
		guestNames = append(guestNames, g.Name)
	}
	attendedCount += len(guestNames)

	confirmedCount := len(sets.Confirmed)

	resp := RunResponse{
		ID:              r.ID,
		Title:           r.Title,
		Date:            r.Date.Format(dateLayout),
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		LocationID:      r.LocationID,
		LocationName:    r.LocationName,
		LocationAddress: r.LocationAddress,
		Description:     r.Description,
		Capacity:        r.Capacity,
		IsVariableCost:  r.IsVariableCost,
		TotalCostCents:  r.TotalCostCents,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		IsHistorical:    r.IsHistorical,
		IsCompleted:     r.IsCompleted,
		CompletedAt:     r.CompletedAt,
		CompletedBy:     r.CompletedBy,
		Participants:    sets,
		ParticipantCounts: ParticipantCounts{
			Confirmed:  confirmedCount,
			Interested: len(sets.Interested),
			Out:        len(sets.Out),
			Attended:   attendedCount,
			NoShow:     len(sets.NoShow),
		},
		GuestAttendees: guestNames,
	}

	resp.CostHidden = r.CostHidden(confirmedCount, revealMinConfirmed)
	if !resp.CostHidden {
		resp.CostCents = r.EffectiveCostPerPersonCents(confirmedCount)
	}

	return resp
}

// AngelaMos | 2026
// entity.go

package announcement

import (
	"time"
)

type Announcement struct {
	ID        string    `db:"id"`
	Message   string    `db:"message"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	IsActive  bool      `db:"is_active"`
}

type ReplaceRequest struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

type AnnouncementResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Envelope carries null when nothing is active, so clients can clear
// their banner without a 404 special case.
type Envelope struct {
	Announcement *AnnouncementResponse `json:"announcement"`
}

func toResponse(a *Announcement) *AnnouncementResponse {
	if a == nil {
		return nil
	}
	return &AnnouncementResponse{
		ID:        a.ID,
		Message:   a.Message,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}

// AngelaMos | 2026
// entity.go

package location

import (
	"time"
)

type Location struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

type CreateLocationRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"required,min=1,max=500"`
}

type UpdateLocationRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,min=1,max=500"`
}

type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type LocationListResponse struct {
	Locations []LocationResponse `json:"locations"`
}

func toResponse(l *Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		CreatedAt: l.CreatedAt,
	}
}

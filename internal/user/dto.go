// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateMeRequest struct {
	Email     *string `json:"email,omitempty"      validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=100"`
}

type AssignBadgeRequest struct {
	Badge      string  `json:"badge"                 validate:"required"`
	ReferredBy *string `json:"referred_by,omitempty" validate:"omitempty,uuid4"`
}

type BulkAssignBadgeRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,uuid4"`
	Badge   string   `json:"badge"    validate:"required"`
}

type VerifyRequest struct {
	Verified bool `json:"verified"`
}

type UserResponse struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email,omitempty"`
	FirstName         *string  `json:"first_name,omitempty"`
	LastName          *string  `json:"last_name,omitempty"`
	Badge             string   `json:"badge"`
	ReferredBy        *string  `json:"referred_by,omitempty"`
	ReferrerUsername  *string  `json:"referrer_username,omitempty"`
	RunsAttendedCount int      `json:"runs_attended_count"`
	NoShowsCount      int      `json:"no_shows_count"`
	AttendanceRate    *float64 `json:"attendance_rate,omitempty"`
	IsAdmin           bool     `json:"is_admin"`
	IsVerified        bool     `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
}

// PublicUserResponse omits contact details and account flags.
type PublicUserResponse struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	FirstName         *string  `json:"first_name,omitempty"`
	LastName          *string  `json:"last_name,omitempty"`
	Badge             string   `json:"badge"`
	RunsAttendedCount int      `json:"runs_attended_count"`
	AttendanceRate    *float64 `json:"attendance_rate,omitempty"`
}

// CommunityResponse groups members by badge tier for the roster page.
// Unverified accounts sit in their own bucket regardless of badge.
type CommunityResponse struct {
	VIP        []PublicUserResponse `json:"vip"`
	Regular    []PublicUserResponse `json:"regular"`
	Rookie     []PublicUserResponse `json:"rookie"`
	PlusOne    []PublicUserResponse `json:"plus_one"`
	None       []PublicUserResponse `json:"none"`
	Unverified []PublicUserResponse `json:"unverified"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Badge    string `json:"badge"`
	Verified *bool  `json:"verified"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Badge:             u.Badge,
		ReferredBy:        u.ReferredBy,
		RunsAttendedCount: u.RunsAttendedCount,
		NoShowsCount:      u.NoShowsCount,
		AttendanceRate:    u.AttendanceRate(),
		IsAdmin:           u.IsAdmin,
		IsVerified:        u.IsVerified,
		CreatedAt:         u.CreatedAt,
	}
}

func ToPublicUserResponse(u *User) PublicUserResponse {
	return PublicUserResponse{
		ID:                u.ID,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Badge:             u.Badge,
		RunsAttendedCount: u.RunsAttendedCount,
		AttendanceRate:    u.AttendanceRate(),
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}

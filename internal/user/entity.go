// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                string    `db:"id"`
	Username          string    `db:"username"`
	Email             string    `db:"email"`
	PasswordHash      string    `db:"password_hash"`
	FirstName         *string   `db:"first_name"`
	LastName          *string   `db:"last_name"`
	Badge             string    `db:"badge"`
	ReferredBy        *string   `db:"referred_by"`
	RunsAttendedCount int       `db:"runs_attended_count"`
	NoShowsCount      int       `db:"no_shows_count"`
	IsAdmin           bool      `db:"is_admin"`
	IsVerified        bool      `db:"is_verified"`
	TokenVersion      int       `db:"token_version"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

const (
	BadgeNone    = "none"
	BadgeRegular = "regular"
	BadgePlusOne = "plus_one"
	BadgeVIP     = "vip"
	BadgeRookie  = "rookie"
)

// ValidBadge covers every value the column accepts, including tiers kept
// for imported legacy data.
func ValidBadge(b string) bool {
	switch b {
	case BadgeNone, BadgeRegular, BadgePlusOne, BadgeVIP, BadgeRookie:
		return true
	}
	return false
}

// AssignableBadge is the subset the badge endpoints hand out.
func AssignableBadge(b string) bool {
	return b == BadgeNone || b == BadgeRegular || b == BadgePlusOne
}

// AttendanceRate is attended / (attended + no-shows) as a percentage,
// nil before the user has any completed-run record.
func (u *User) AttendanceRate() *float64 {
	total := u.RunsAttendedCount + u.NoShowsCount
	if total == 0 {
		return nil
	}
	rate := float64(u.RunsAttendedCount) / float64(total) * 100
	return &rate
}

// DisplayName prefers the real name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName == nil || *u.FirstName == "" {
		return u.Username
	}
	name := *u.FirstName
	if u.LastName != nil && *u.LastName != "" {
		name += " " + *u.LastName
	}
	return name
}

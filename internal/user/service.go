// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fullcourthq/fullcourt-api/internal/auth"
	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	username, email, passwordHash string,
	firstName, lastName *string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Username:     normalizeUsername(username),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Badge:        BadgeNone,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// IDByUsername resolves a username for historical run imports.
func (s *Service) IDByUsername(
	ctx context.Context,
	username string,
) (string, error) {
	user, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		if email != user.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, core.DuplicateError("email")
			}
			user.Email = email
		}
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// AssignBadge sets a user's badge. plus_one is a sponsored tier: the
// referrer must exist and hold the regular badge at assignment time.
// Later changes to the referrer do not cascade.
func (s *Service) AssignBadge(
	ctx context.Context,
	userID, badge string,
	referredBy *string,
) (*User, error) {
	if !AssignableBadge(badge) {
		return nil, core.ValidationError("invalid badge", map[string]string{
			"badge": "badge must be none, regular, or plus_one",
		})
	}

	if badge == BadgePlusOne {
		if referredBy == nil || *referredBy == "" {
			return nil, core.ValidationError(
				"plus_one requires a referrer",
				map[string]string{"referred_by": "referred_by is required for plus_one"},
			)
		}

		referrer, err := s.repo.GetByID(ctx, *referredBy)
		if err != nil {
			return nil, core.ValidationError(
				"referrer not found",
				map[string]string{"referred_by": "no such user"},
			)
		}

		if referrer.Badge != BadgeRegular {
			return nil, core.ValidationError(
				"referrer must hold the regular badge",
				map[string]string{"referred_by": "referrer badge is " + referrer.Badge},
			)
		}
	} else {
		referredBy = nil
	}

	if err := s.repo.UpdateBadge(ctx, userID, badge, referredBy); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

// BulkAssignBadge applies one badge to many users. plus_one is refused
// outright since the bulk form carries no per-user referrer.
func (s *Service) BulkAssignBadge(
	ctx context.Context,
	userIDs []string,
	badge string,
) ([]User, error) {
	if badge == BadgePlusOne {
		return nil, core.ValidationError(
			"plus_one cannot be assigned in bulk",
			map[string]string{"badge": "assign plus_one per user with a referrer"},
		)
	}

	if !AssignableBadge(badge) {
		return nil, core.ValidationError("invalid badge", map[string]string{
			"badge": "badge must be none or regular",
		})
	}

	updated := make([]User, 0, len(userIDs))
	for _, id := range userIDs {
		if err := s.repo.UpdateBadge(ctx, id, badge, nil); err != nil {
			return nil, fmt.Errorf("bulk assign badge: user %s: %w", id, err)
		}

		user, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		updated = append(updated, *user)
	}

	return updated, nil
}

func (s *Service) SetVerified(
	ctx context.Context,
	userID string,
	verified bool,
) (*User, error) {
	if err := s.repo.SetVerified(ctx, userID, verified); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// Community groups every member by badge tier for the roster page.
// Unverified accounts land in their own bucket regardless of badge.
func (s *Service) Community(ctx context.Context) (*CommunityResponse, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := &CommunityResponse{
		VIP:        []PublicUserResponse{},
		Regular:    []PublicUserResponse{},
		Rookie:     []PublicUserResponse{},
		PlusOne:    []PublicUserResponse{},
		None:       []PublicUserResponse{},
		Unverified: []PublicUserResponse{},
	}

	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].DisplayName()) <
			strings.ToLower(users[j].DisplayName())
	})

	for i := range users {
		u := &users[i]
		view := ToPublicUserResponse(u)

		if !u.IsVerified {
			resp.Unverified = append(resp.Unverified, view)
			continue
		}

		switch u.Badge {
		case BadgeVIP:
			resp.VIP = append(resp.VIP, view)
		case BadgeRegular:
			resp.Regular = append(resp.Regular, view)
		case BadgeRookie:
			resp.Rookie = append(resp.Rookie, view)
		case BadgePlusOne:
			resp.PlusOne = append(resp.PlusOne, view)
		default:
			resp.None = append(resp.None, view)
		}
	}

	return resp, nil
}

func (s *Service) RecalculateStats(ctx context.Context) (int64, error) {
	return s.repo.RecalculateStats(ctx)
}

func (s *Service) UsernameExists(
	ctx context.Context,
	username string,
) (bool, error) {
	return s.repo.ExistsByUsername(ctx, normalizeUsername(username))
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Admin:        u.IsAdmin,
		Verified:     u.IsVerified,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)

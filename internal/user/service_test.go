// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo(users ...*User) *fakeRepo {
	f := &fakeRepo{users: map[string]*User{}}
	for _, u := range users {
		copied := *u
		f.users[u.ID] = &copied
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, user *User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return core.ErrDuplicateKey
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) GetByUsername(
	_ context.Context,
	username string,
) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return core.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeRepo) UpdateBadge(
	_ context.Context,
	id, badge string,
	referredBy *string,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Badge = badge
	u.ReferredBy = referredBy
	return nil
}

func (f *fakeRepo) SetVerified(
	_ context.Context,
	id string,
	verified bool,
) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.IsVerified = verified
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (f *fakeRepo) List(
	_ context.Context,
	_ ListUsersParams,
) ([]User, int, error) {
	users, _ := f.ListAll(context.Background())
	return users, len(users), nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRepo) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *fakeRepo) ExistsByUsername(
	_ context.Context,
	username string,
) (bool, error) {
	_, err := f.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (f *fakeRepo) RecalculateStats(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func member(id, username, badge string, verified bool) *User {
	return &User{
		ID:         id,
		Username:   username,
		Email:      username + "@example.com",
		Badge:      badge,
		IsVerified: verified,
	}
}

func TestAssignBadgePlusOneRequiresRegularReferrer(t *testing.T) {
	sponsor := member("u-sponsor", "sponsor", BadgeRegular, true)
	rookie := member("u-rookie", "rookie", BadgeNone, true)
	newcomer := member("u-new", "newcomer", BadgeNone, true)
	svc := NewService(newFakeRepo(sponsor, rookie, newcomer))

	ctx := context.Background()

	// No referrer at all.
	_, err := svc.AssignBadge(ctx, "u-new", BadgePlusOne, nil)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Referrer exists but is not regular.
	_, err = svc.AssignBadge(ctx, "u-new", BadgePlusOne, &rookie.ID)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error for non-regular referrer, got %v", err)
	}

	// Valid sponsorship.
	updated, err := svc.AssignBadge(ctx, "u-new", BadgePlusOne, &sponsor.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.Badge != BadgePlusOne {
		t.Fatalf("badge = %s, want plus_one", updated.Badge)
	}
	if updated.ReferredBy == nil || *updated.ReferredBy != sponsor.ID {
		t.Fatalf("referred_by = %v, want %s", updated.ReferredBy, sponsor.ID)
	}
}

func TestAssignBadgeRegularClearsReferrer(t *testing.T) {
	sponsor := member("u-sponsor", "sponsor", BadgeRegular, true)
	holder := member("u-holder", "holder", BadgePlusOne, true)
	holder.ReferredBy = &sponsor.ID
	svc := NewService(newFakeRepo(sponsor, holder))

	stray := "u-irrelevant"
	updated, err := svc.AssignBadge(context.Background(), "u-holder", BadgeRegular, &stray)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if updated.Badge != BadgeRegular || updated.ReferredBy != nil {
		t.Fatalf("got badge=%s referred_by=%v, want regular with no referrer",
			updated.Badge, updated.ReferredBy)
	}
}

func TestAssignBadgeRejectsUnassignableTier(t *testing.T) {
	svc := NewService(newFakeRepo(member("u1", "u1", BadgeNone, true)))

	_, err := svc.AssignBadge(context.Background(), "u1", BadgeVIP, nil)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReferrerDemotionDoesNotCascade(t *testing.T) {
	sponsor := member("u-sponsor", "sponsor", BadgeRegular, true)
	holder := member("u-holder", "holder", BadgePlusOne, true)
	holder.ReferredBy = &sponsor.ID
	repo := newFakeRepo(sponsor, holder)
	svc := NewService(repo)

	if _, err := svc.AssignBadge(context.Background(), "u-sponsor", BadgeNone, nil); err != nil {
		t.Fatalf("demote: %v", err)
	}

	kept, _ := repo.GetByID(context.Background(), "u-holder")
	if kept.Badge != BadgePlusOne || kept.ReferredBy == nil {
		t.Fatalf("plus_one holder should keep a dangling referrer, got %+v", kept)
	}
}

func TestBulkAssignBadgeRejectsPlusOne(t *testing.T) {
	svc := NewService(newFakeRepo(
		member("u1", "u1", BadgeNone, true),
		member("u2", "u2", BadgeNone, true),
	))

	_, err := svc.BulkAssignBadge(
		context.Background(), []string{"u1", "u2"}, BadgePlusOne,
	)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkAssignBadgeRegular(t *testing.T) {
	repo := newFakeRepo(
		member("u1", "u1", BadgeNone, true),
		member("u2", "u2", BadgeNone, true),
	)
	svc := NewService(repo)

	updated, err := svc.BulkAssignBadge(
		context.Background(), []string{"u1", "u2"}, BadgeRegular,
	)
	if err != nil {
		t.Fatalf("bulk assign: %v", err)
	}

	if len(updated) != 2 {
		t.Fatalf("updated = %d, want 2", len(updated))
	}
	for _, u := range updated {
		if u.Badge != BadgeRegular {
			t.Fatalf("badge = %s, want regular", u.Badge)
		}
	}
}

func TestUpdateMeEmailUniqueness(t *testing.T) {
	svc := NewService(newFakeRepo(
		member("u1", "alice", BadgeNone, true),
		member("u2", "bob", BadgeNone, true),
	))

	taken := "bob@example.com"
	_, err := svc.UpdateMe(context.Background(), "u1", UpdateMeRequest{Email: &taken})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	// Re-submitting your own email is a no-op, not a conflict.
	own := "Alice@Example.com"
	updated, err := svc.UpdateMe(context.Background(), "u1", UpdateMeRequest{Email: &own})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "alice@example.com" {
		t.Fatalf("email = %s", updated.Email)
	}
}

func TestCommunityGrouping(t *testing.T) {
	svc := NewService(newFakeRepo(
		member("u1", "zed", BadgeRegular, true),
		member("u2", "amy", BadgeRegular, true),
		member("u3", "vic", BadgeVIP, true),
		member("u4", "pat", BadgePlusOne, true),
		member("u5", "raw", BadgeRegular, false),
		member("u6", "non", BadgeNone, true),
	))

	community, err := svc.Community(context.Background())
	if err != nil {
		t.Fatalf("community: %v", err)
	}

	if len(community.Regular) != 2 ||
		community.Regular[0].Username != "amy" ||
		community.Regular[1].Username != "zed" {
		t.Fatalf("regular bucket = %+v", community.Regular)
	}

	if len(community.VIP) != 1 || len(community.PlusOne) != 1 || len(community.None) != 1 {
		t.Fatalf("buckets = vip:%d plus_one:%d none:%d",
			len(community.VIP), len(community.PlusOne), len(community.None))
	}

	// Unverified members never appear in a badge bucket.
	if len(community.Unverified) != 1 || community.Unverified[0].Username != "raw" {
		t.Fatalf("unverified bucket = %+v", community.Unverified)
	}
}

func TestAttendanceRate(t *testing.T) {
	u := &User{}
	if u.AttendanceRate() != nil {
		t.Fatal("no record should yield nil rate")
	}

	u.RunsAttendedCount = 3
	u.NoShowsCount = 1
	rate := u.AttendanceRate()
	if rate == nil || *rate != 75 {
		t.Fatalf("rate = %v, want 75", rate)
	}
}

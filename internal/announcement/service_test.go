// AngelaMos | 2026
// service_test.go

package announcement

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeRepo struct {
	active   *Announcement
	getCalls int
}

func (f *fakeRepo) GetActive(_ context.Context) (*Announcement, error) {
	f.getCalls++
	return f.active, nil
}

func (f *fakeRepo) Replace(
	_ context.Context,
	message, createdBy string,
) (*Announcement, error) {
	f.active = &Announcement{
		ID:        "a-new",
		Message:   message,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}
	return f.active, nil
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewService(repo, rdb)
}

func TestGetActiveCachesAfterMiss(t *testing.T) {
	repo := &fakeRepo{active: &Announcement{
		ID:        "a1",
		Message:   "Saturday run moved to 10am",
		CreatedBy: "u-admin",
		IsActive:  true,
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first.Announcement == nil || first.Announcement.ID != "a1" {
		t.Fatalf("envelope = %+v", first.Announcement)
	}

	// Second read is served from redis without touching the repository.
	second, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.Announcement == nil || second.Announcement.Message != first.Announcement.Message {
		t.Fatalf("cached envelope = %+v", second.Announcement)
	}
	if repo.getCalls != 1 {
		t.Fatalf("repo hit %d times, want 1", repo.getCalls)
	}
}

func TestGetActiveCachesEmptyEnvelope(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	for range 2 {
		envelope, err := svc.GetActive(ctx)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if envelope.Announcement != nil {
			t.Fatalf("expected null announcement, got %+v", envelope.Announcement)
		}
	}

	if repo.getCalls != 1 {
		t.Fatalf("repo hit %d times, want 1", repo.getCalls)
	}
}

func TestReplaceInvalidatesCache(t *testing.T) {
	repo := &fakeRepo{active: &Announcement{
		ID:       "a1",
		Message:  "old banner",
		IsActive: true,
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.GetActive(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	created, err := svc.Replace(ctx, "new banner", "u-admin")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if created.Message != "new banner" {
		t.Fatalf("created = %+v", created)
	}

	after, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Announcement == nil || after.Announcement.Message != "new banner" {
		t.Fatalf("stale envelope after replace: %+v", after.Announcement)
	}
	if repo.getCalls != 2 {
		t.Fatalf("repo hit %d times, want 2", repo.getCalls)
	}
}

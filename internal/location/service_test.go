// AngelaMos | 2026
// service_test.go

package location

import (
	"context"
	"errors"
	"testing"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type fakeRepo struct {
	locations map[string]*Location
	inUse     map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		locations: map[string]*Location{},
		inUse:     map[string]bool{},
	}
}

func (f *fakeRepo) Create(_ context.Context, location *Location) error {
	copied := *location
	f.locations[location.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Location, error) {
	l, ok := f.locations[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (f *fakeRepo) Update(_ context.Context, location *Location) error {
	if _, ok := f.locations[location.ID]; !ok {
		return core.ErrNotFound
	}
	copied := *location
	f.locations[location.ID] = &copied
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.locations[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.locations, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]Location, error) {
	out := make([]Location, 0, len(f.locations))
	for _, l := range f.locations {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeRepo) InUse(_ context.Context, id string) (bool, error) {
	return f.inUse[id], nil
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateLocationRequest{
		Name:    "Rucker Park",
		Address: "155th St and Frederick Douglass Blvd",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.inUse[created.ID] = true

	err = svc.Delete(context.Background(), created.ID)
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, ok := repo.locations[created.ID]; !ok {
		t.Fatal("referenced location was deleted")
	}
}

func TestDeleteUnreferencedLocation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateLocationRequest{
		Name:    "The Cage",
		Address: "West 4th St",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.locations[created.ID]; ok {
		t.Fatal("location still present after delete")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateLocationRequest{
		Name:    "Community Gym",
		Address: "12 Main St",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	address := "14 Main St, rear entrance"
	updated, err := svc.Update(context.Background(), created.ID, UpdateLocationRequest{
		Address: &address,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Community Gym" || updated.Address != address {
		t.Fatalf("updated = %+v", updated)
	}
}

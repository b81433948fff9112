// AngelaMos | 2026
// service.go

package location

import (
	"context"

	"github.com/google/uuid"

	"github.com/fullcourthq/fullcourt-api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Location, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Location, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	req CreateLocationRequest,
) (*Location, error) {
	location := &Location{
		ID:      uuid.New().String(),
		Name:    req.Name,
		Address: req.Address,
	}

	if err := s.repo.Create(ctx, location); err != nil {
		return nil, err
	}

	return location, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateLocationRequest,
) (*Location, error) {
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Address != nil {
		location.Address = *req.Address
	}

	if err := s.repo.Update(ctx, location); err != nil {
		return nil, err
	}

	return location, nil
}

// Delete refuses to remove a venue that any run still references, past
// or future, since run reads join against it.
func (s *Service) Delete(ctx context.Context, id string) error {
	inUse, err := s.repo.InUse(ctx, id)
	if err != nil {
		return err
	}

	if inUse {
		return core.ConflictError("location is referenced by existing runs")
	}

	return s.repo.Delete(ctx, id)
}

package items

import (
	"context"
)

// Service is the facade the transport layer depends on. It validates input
// and delegates to the injected Repository; swapping the storage technology
// never touches routing code.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Create validates req before any store call, so malformed input never
// reaches the backend.
func (s *Service) Create(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

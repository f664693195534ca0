package restaurant

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"menuflow/pkg/apperr"
	"menuflow/pkg/otel"
)

// Service creates and lists restaurants.
type Service struct {
	repo Repository
}

// NewService returns a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the candidate and persists it.
func (s *Service) Create(ctx context.Context, c Candidate) (Restaurant, error) {
	ctx, span := otel.AddSpan(ctx, "restaurant.Create")
	defer span.End()

	r, err := c.Validate()
	if err != nil {
		return Restaurant{}, err
	}

	saved, err := s.repo.Create(ctx, r)
	if err != nil {
		return Restaurant{}, apperr.Storage("create restaurant", err)
	}
	span.SetAttributes(attribute.String("restaurant.id", saved.ID))
	return saved, nil
}

// List returns every stored restaurant.
func (s *Service) List(ctx context.Context) ([]Restaurant, error) {
	ctx, span := otel.AddSpan(ctx, "restaurant.List")
	defer span.End()

	rs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list restaurants", err)
	}
	if rs == nil {
		rs = []Restaurant{}
	}
	return rs, nil
}

// Get returns the restaurant with id, or a NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (Restaurant, error) {
	r, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Restaurant{}, &apperr.NotFoundError{ID: id}
	}
	if err != nil {
		return Restaurant{}, apperr.Storage("get restaurant", err)
	}
	return r, nil
}

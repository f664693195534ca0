package order

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"menuflow/pkg/apperr"
	"menuflow/pkg/logger"
	"menuflow/pkg/otel"
)

// Pricer computes the total of an order against a restaurant's menu.
type Pricer interface {
	Price(ctx context.Context, restaurantID string, lines []Line) (float64, error)
}

// Service places and lists orders.
type Service struct {
	repo     Repository
	pricer   Pricer
	notifier Notifier
	log      *logger.Logger
}

// NewService returns a Service. notifier may be nil.
func NewService(repo Repository, pricer Pricer, notifier Notifier, log *logger.Logger) *Service {
	return &Service{repo: repo, pricer: pricer, notifier: notifier, log: log}
}

// Place validates and prices the request, then stores the order. Nothing is
// stored unless every line is priced.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.Place", attribute.String("restaurant.id", req.RestaurantID))
	defer span.End()

	lines, err := req.Validate()
	if err != nil {
		return Order{}, err
	}

	total, err := s.pricer.Price(ctx, req.RestaurantID, lines)
	if err != nil {
		return Order{}, err
	}

	o, err := s.Create(ctx, req.RestaurantID, lines, total)
	if err != nil {
		return Order{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, o); err != nil {
			s.log.Warn(ctx, "publish order placed", "order_id", o.ID, "error", err)
		}
	}
	return o, nil
}

// Create persists an order with a precomputed total.
func (s *Service) Create(ctx context.Context, restaurantID string, lines []Line, total float64) (Order, error) {
	if restaurantID == "" {
		return Order{}, apperr.Invalid("restaurantId", "is required")
	}
	if lines == nil {
		lines = []Line{}
	}

	o, err := s.repo.Create(ctx, Order{RestaurantID: restaurantID, Items: lines, Total: total})
	if err != nil {
		return Order{}, apperr.Storage("create order", err)
	}
	return o, nil
}

// List returns every stored order joined with its current restaurant.
func (s *Service) List(ctx context.Context) ([]Detail, error) {
	ctx, span := otel.AddSpan(ctx, "order.List")
	defer span.End()

	ds, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list orders", err)
	}
	if ds == nil {
		ds = []Detail{}
	}
	return ds, nil
}

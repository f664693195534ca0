// Package pricing computes order totals from authoritative menu prices.
package pricing

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"menuflow/pkg/apperr"
	"menuflow/pkg/order"
	"menuflow/pkg/otel"
	"menuflow/pkg/restaurant"
)

// Finder loads a restaurant, returning *apperr.NotFoundError when absent.
type Finder interface {
	Get(ctx context.Context, id string) (restaurant.Restaurant, error)
}

// Pricer prices orders against the current menu.
type Pricer struct {
	restaurants Finder
}

// New returns a Pricer reading restaurants from f.
func New(f Finder) *Pricer {
	return &Pricer{restaurants: f}
}

// Price returns the sum of price × quantity over lines. The restaurant is
// read once per order. Lines are checked in order and the first one whose
// item is not on the menu fails the whole order. A total that does not fit
// in a float64 is rejected as invalid.
func (p *Pricer) Price(ctx context.Context, restaurantID string, lines []order.Line) (float64, error) {
	ctx, span := otel.AddSpan(ctx, "pricing.Price",
		attribute.String("restaurant.id", restaurantID),
		attribute.Int("order.lines", len(lines)),
	)
	defer span.End()

	r, err := p.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, l := range lines {
		mi, ok := r.Lookup(l.Item)
		if !ok {
			return 0, &apperr.ItemNotFoundError{Item: l.Item}
		}
		total = total.Add(decimal.NewFromFloat(mi.Price).Mul(decimal.NewFromFloat(l.Quantity)))
	}

	f := total.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, apperr.Invalid("total", "exceeds the representable range")
	}
	return f, nil
}

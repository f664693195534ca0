package order

import (
	"context"
	"fmt"

	"menuflow/pkg/apperr"
	"menuflow/pkg/restaurant"
)

// Line is one (item, quantity) pair of an order.
type Line struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
}

// Order represents a placed order. Total is always computed by the server.
type Order struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Items        []Line  `json:"items"`
	Total        float64 `json:"total"`
}

// Detail is an order with its restaurant reference resolved to the current
// restaurant record. Restaurant is nil when the reference is dangling.
type Detail struct {
	ID         string                 `json:"id"`
	Restaurant *restaurant.Restaurant `json:"restaurantId"`
	Items      []Line                 `json:"items"`
	Total      float64                `json:"total"`
}

// Repository defines behavior for persisting orders.
type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	List(ctx context.Context) ([]Detail, error)
}

// Notifier is told about every stored order.
type Notifier interface {
	OrderPlaced(ctx context.Context, o Order) error
}

// PlaceRequest is the client payload for placing an order. Any client-side id
// or total is not part of it and is therefore ignored.
type PlaceRequest struct {
	RestaurantID string      `json:"restaurantId"`
	Items        []LineInput `json:"items"`
}

// LineInput is a requested line. Quantity is a pointer so that a missing
// quantity can be told apart from zero.
type LineInput struct {
	Item     string   `json:"item"`
	Quantity *float64 `json:"quantity"`
}

// Validate checks required fields and returns the lines to price.
func (r PlaceRequest) Validate() ([]Line, error) {
	if r.RestaurantID == "" {
		return nil, apperr.Invalid("restaurantId", "is required")
	}

	lines := make([]Line, 0, len(r.Items))
	for i, li := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if li.Item == "" {
			return nil, apperr.Invalid(field+".item", "is required")
		}
		if li.Quantity == nil {
			return nil, apperr.Invalid(field+".quantity", "is required")
		}
		lines = append(lines, Line{Item: li.Item, Quantity: *li.Quantity})
	}
	return lines, nil
}

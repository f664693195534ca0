// Package api exposes restaurants and orders over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"menuflow/pkg/apperr"
	"menuflow/pkg/logger"
	"menuflow/pkg/order"
	"menuflow/pkg/otel"
	"menuflow/pkg/restaurant"
)

// RestaurantService is the restaurant use-case surface used by the handlers.
type RestaurantService interface {
	Create(ctx context.Context, c restaurant.Candidate) (restaurant.Restaurant, error)
	List(ctx context.Context) ([]restaurant.Restaurant, error)
}

// OrderService is the order use-case surface used by the handlers.
type OrderService interface {
	Place(ctx context.Context, req order.PlaceRequest) (order.Order, error)
	List(ctx context.Context) ([]order.Detail, error)
}

// Handlers serves the HTTP endpoints.
type Handlers struct {
	restaurants RestaurantService
	orders      OrderService
	log         *logger.Logger
}

// NewHandlers returns Handlers wired to the given services.
func NewHandlers(restaurants RestaurantService, orders OrderService, log *logger.Logger) *Handlers {
	return &Handlers{restaurants: restaurants, orders: orders, log: log}
}

// listRestaurants lists restaurants.
// @Summary List restaurants
// @Produce json
// @Success 200 {array} restaurant.Restaurant
// @Failure 500 {object} api.errorResponse
// @Router /restaurants [get]
func (h *Handlers) listRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listRestaurantsHandler")
	defer span.End()

	rs, err := h.restaurants.List(ctx)
	if err != nil {
		h.fail(ctx, w, "list restaurants", err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// createRestaurant adds a restaurant.
// @Summary Create restaurant
// @Accept json
// @Produce json
// @Param restaurant body restaurant.Candidate true "Restaurant"
// @Success 201 {object} restaurant.Restaurant
// @Failure 400 {object} api.errorResponse
// @Failure 500 {object} api.errorResponse
// @Router /restaurants [post]
func (h *Handlers) createRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createRestaurantHandler")
	defer span.End()

	var c restaurant.Candidate
	if err := decode(r, &c); err != nil {
		h.fail(ctx, w, "create restaurant", err)
		return
	}

	saved, err := h.restaurants.Create(ctx, c)
	if err != nil {
		h.fail(ctx, w, "create restaurant", err)
		return
	}
	h.log.Info(ctx, "restaurant created", "restaurant_id", saved.ID, "menu_items", len(saved.Menu))
	writeJSON(w, http.StatusCreated, saved)
}

// placeOrder prices and stores an order.
// @Summary Place order
// @Description The total is computed from the restaurant's current menu; any client total is ignored.
// @Accept json
// @Produce json
// @Param order body order.PlaceRequest true "Order"
// @Success 201 {object} order.Order
// @Failure 400 {object} api.errorResponse
// @Failure 500 {object} api.errorResponse
// @Router /orders [post]
func (h *Handlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "placeOrderHandler")
	defer span.End()

	var req order.PlaceRequest
	if err := decode(r, &req); err != nil {
		h.fail(ctx, w, "place order", err)
		return
	}

	o, err := h.orders.Place(ctx, req)
	if err != nil {
		h.fail(ctx, w, "place order", err)
		return
	}
	span.SetAttributes(attribute.String("order.id", o.ID), attribute.Float64("order.total", o.Total))
	h.log.Info(ctx, "order placed", "order_id", o.ID, "restaurant_id", o.RestaurantID, "total", o.Total)
	writeJSON(w, http.StatusCreated, o)
}

// listOrders lists orders with their restaurant resolved.
// @Summary List orders
// @Produce json
// @Success 200 {array} order.Detail
// @Failure 500 {object} api.errorResponse
// @Router /orders [get]
func (h *Handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	ds, err := h.orders.List(ctx)
	if err != nil {
		h.fail(ctx, w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *Handlers) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(ctx, op, "error", err)
	} else {
		h.log.Debug(ctx, op, "rejected", err)
	}
	writeJSON(w, status, errorResponse{Message: err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &apperr.ValidationError{Reason: "invalid JSON body: " + err.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(b, '\n'))
}

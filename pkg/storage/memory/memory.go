// Package memory implements in-memory restaurant and order repositories.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"menuflow/pkg/order"
	"menuflow/pkg/restaurant"
)

// Store holds restaurants and orders in insertion order.
type Store struct {
	mu          sync.RWMutex
	restaurants []restaurant.Restaurant
	byID        map[string]int
	orders      []order.Order
}

// New creates an empty Store.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// Restaurants returns the restaurant repository view of the store.
func (s *Store) Restaurants() *Restaurants { return &Restaurants{s: s} }

// Orders returns the order repository view of the store.
func (s *Store) Orders() *Orders { return &Orders{s: s} }

// Restaurants implements restaurant.Repository.
type Restaurants struct{ s *Store }

// Create stores the restaurant under a new id.
func (r *Restaurants) Create(ctx context.Context, rs restaurant.Restaurant) (restaurant.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rs.ID = uuid.NewString()
	rs.Menu = cloneMenu(rs.Menu)
	r.s.byID[rs.ID] = len(r.s.restaurants)
	r.s.restaurants = append(r.s.restaurants, rs)
	return copyRestaurant(rs), nil
}

// Get retrieves a restaurant by ID.
func (r *Restaurants) Get(ctx context.Context, id string) (restaurant.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.byID[id]
	if !ok {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}
	return copyRestaurant(r.s.restaurants[i]), nil
}

// List returns all restaurants.
func (r *Restaurants) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]restaurant.Restaurant, 0, len(r.s.restaurants))
	for _, rs := range r.s.restaurants {
		out = append(out, copyRestaurant(rs))
	}
	return out, nil
}

// Orders implements order.Repository.
type Orders struct{ s *Store }

// Create stores the order under a new id.
func (o *Orders) Create(ctx context.Context, ord order.Order) (order.Order, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	ord.ID = uuid.NewString()
	stored := ord
	stored.Items = slices.Clone(ord.Items)
	o.s.orders = append(o.s.orders, stored)
	return ord, nil
}

// List returns all orders with their restaurant resolved at read time.
func (o *Orders) List(ctx context.Context) ([]order.Detail, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()
	out := make([]order.Detail, 0, len(o.s.orders))
	for _, ord := range o.s.orders {
		d := order.Detail{ID: ord.ID, Items: slices.Clone(ord.Items), Total: ord.Total}
		if i, ok := o.s.byID[ord.RestaurantID]; ok {
			rs := copyRestaurant(o.s.restaurants[i])
			d.Restaurant = &rs
		}
		out = append(out, d)
	}
	return out, nil
}

func copyRestaurant(rs restaurant.Restaurant) restaurant.Restaurant {
	rs.Menu = cloneMenu(rs.Menu)
	return rs
}

func cloneMenu(m []restaurant.MenuItem) []restaurant.MenuItem {
	if m == nil {
		return []restaurant.MenuItem{}
	}
	return slices.Clone(m)
}

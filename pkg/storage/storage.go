// Package storage opens the datastore named by a connection URI.
package storage

import (
	"context"
	"fmt"
	"net/url"

	"menuflow/pkg/order"
	"menuflow/pkg/restaurant"
	"menuflow/pkg/storage/memory"
	"menuflow/pkg/storage/mongo"
	"menuflow/pkg/storage/postgres"
)

// Backend bundles the repositories of one datastore with its lifecycle.
type Backend struct {
	Kind        string
	Restaurants restaurant.Repository
	Orders      order.Repository
	close       func(ctx context.Context) error
}

// Close releases the datastore connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Kind returns the backend name for a connection URI scheme.
func Kind(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse datastore uri: %w", err)
	}
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return "mongo", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "memory":
		return "memory", nil
	default:
		return "", fmt.Errorf("unsupported datastore scheme %q", u.Scheme)
	}
}

// Open connects to the datastore at uri.
func Open(ctx context.Context, uri string) (*Backend, error) {
	kind, err := Kind(uri)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "mongo":
		db, err := mongo.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		return &Backend{Kind: kind, Restaurants: db.Restaurants(), Orders: db.Orders(), close: db.Close}, nil
	case "postgres":
		db, err := postgres.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Kind:        kind,
			Restaurants: postgres.NewRestaurants(db),
			Orders:      postgres.NewOrders(db),
			close:       func(context.Context) error { return db.Close() },
		}, nil
	default:
		s := memory.New()
		return &Backend{Kind: kind, Restaurants: s.Restaurants(), Orders: s.Orders()}, nil
	}
}

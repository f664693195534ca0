// Package postgres persists restaurants and orders in PostgreSQL. Menus and
// order lines are stored as JSONB documents.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"menuflow/pkg/order"
	"menuflow/pkg/restaurant"
)

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	seq  BIGSERIAL,
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	menu JSONB NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS orders (
	seq           BIGSERIAL,
	id            TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL,
	items         JSONB NOT NULL DEFAULT '[]',
	total         DOUBLE PRECISION NOT NULL
);`

// Open connects to dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return db, nil
}

// Restaurants persists restaurants in PostgreSQL.
type Restaurants struct {
	db *sql.DB
}

// NewRestaurants creates a PostgreSQL restaurant repository.
func NewRestaurants(db *sql.DB) *Restaurants {
	return &Restaurants{db: db}
}

// Create inserts a new restaurant.
func (r *Restaurants) Create(ctx context.Context, rs restaurant.Restaurant) (restaurant.Restaurant, error) {
	if rs.Menu == nil {
		rs.Menu = []restaurant.MenuItem{}
	}
	menu, err := json.Marshal(rs.Menu)
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	rs.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, "INSERT INTO restaurants (id,name,menu) VALUES ($1,$2,$3)", rs.ID, rs.Name, string(menu))
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	return rs, nil
}

// Get retrieves a restaurant by ID.
func (r *Restaurants) Get(ctx context.Context, id string) (restaurant.Restaurant, error) {
	var (
		rs   restaurant.Restaurant
		menu []byte
	)
	err := r.db.QueryRowContext(ctx, "SELECT id,name,menu FROM restaurants WHERE id=$1", id).Scan(&rs.ID, &rs.Name, &menu)
	if err == sql.ErrNoRows {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	if err := json.Unmarshal(menu, &rs.Menu); err != nil {
		return restaurant.Restaurant{}, fmt.Errorf("decode menu of %s: %w", id, err)
	}
	return rs, nil
}

// List fetches all restaurants.
func (r *Restaurants) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,name,menu FROM restaurants ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []restaurant.Restaurant
	for rows.Next() {
		var (
			rs   restaurant.Restaurant
			menu []byte
		)
		if err := rows.Scan(&rs.ID, &rs.Name, &menu); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(menu, &rs.Menu); err != nil {
			return nil, fmt.Errorf("decode menu of %s: %w", rs.ID, err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Orders persists orders in PostgreSQL.
type Orders struct {
	db *sql.DB
}

// NewOrders creates a PostgreSQL order repository.
func NewOrders(db *sql.DB) *Orders {
	return &Orders{db: db}
}

// Create inserts a new order.
func (r *Orders) Create(ctx context.Context, o order.Order) (order.Order, error) {
	if o.Items == nil {
		o.Items = []order.Line{}
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return order.Order{}, err
	}
	o.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, "INSERT INTO orders (id,restaurant_id,items,total) VALUES ($1,$2,$3,$4)",
		o.ID, o.RestaurantID, string(items), o.Total)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

// List fetches all orders joined with their current restaurant.
func (r *Orders) List(ctx context.Context) ([]order.Detail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.items, o.total, r.id, r.name, r.menu
		FROM orders o
		LEFT JOIN restaurants r ON r.id = o.restaurant_id
		ORDER BY o.seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []order.Detail
	for rows.Next() {
		var (
			d           order.Detail
			items, menu []byte
			rID, rName  sql.NullString
		)
		if err := rows.Scan(&d.ID, &items, &d.Total, &rID, &rName, &menu); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &d.Items); err != nil {
			return nil, fmt.Errorf("decode items of %s: %w", d.ID, err)
		}
		if rID.Valid {
			rs := restaurant.Restaurant{ID: rID.String, Name: rName.String}
			if err := json.Unmarshal(menu, &rs.Menu); err != nil {
				return nil, fmt.Errorf("decode menu of %s: %w", rs.ID, err)
			}
			d.Restaurant = &rs
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

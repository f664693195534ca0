package restaurant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"menuflow/pkg/apperr"
)

// MenuItem is a named, priced entry on a restaurant menu.
type MenuItem struct {
	Item  string  `json:"item"`
	Price float64 `json:"price"`
}

// Restaurant is a stored restaurant record.
type Restaurant struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Menu []MenuItem `json:"menu"`
}

// Lookup returns the first menu entry named item. Matching is exact and
// case-sensitive.
func (r Restaurant) Lookup(item string) (MenuItem, bool) {
	for _, mi := range r.Menu {
		if mi.Item == item {
			return mi, true
		}
	}
	return MenuItem{}, false
}

// Repository defines behavior for persisting restaurants.
type Repository interface {
	Create(ctx context.Context, r Restaurant) (Restaurant, error)
	Get(ctx context.Context, id string) (Restaurant, error)
	List(ctx context.Context) ([]Restaurant, error)
}

// ErrNotFound indicates the requested restaurant does not exist.
var ErrNotFound = errors.New("restaurant not found")

// Candidate is a proposed restaurant as submitted by a client.
type Candidate struct {
	Name string          `json:"name"`
	Menu []CandidateItem `json:"menu"`
}

// CandidateItem is a proposed menu entry. Price is a pointer so that a missing
// price can be told apart from zero.
type CandidateItem struct {
	Item  string   `json:"item"`
	Price *float64 `json:"price"`
}

// Validate checks required fields and returns the restaurant to store. The
// name and item names are stored with surrounding whitespace removed.
func (c Candidate) Validate() (Restaurant, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Restaurant{}, apperr.Invalid("name", "is required")
	}

	menu := make([]MenuItem, 0, len(c.Menu))
	for i, ci := range c.Menu {
		field := fmt.Sprintf("menu[%d]", i)
		item := strings.TrimSpace(ci.Item)
		if item == "" {
			return Restaurant{}, apperr.Invalid(field+".item", "is required")
		}
		if ci.Price == nil {
			return Restaurant{}, apperr.Invalid(field+".price", "is required")
		}
		if *ci.Price < 0 {
			return Restaurant{}, apperr.Invalid(field+".price", "must not be negative")
		}
		menu = append(menu, MenuItem{Item: item, Price: *ci.Price})
	}

	return Restaurant{Name: name, Menu: menu}, nil
}

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuflow/pkg/order"
	"menuflow/pkg/restaurant"
)

func TestRepositories(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	rs := NewRestaurants(db)
	saved, err := rs.Create(ctx, restaurant.Restaurant{
		Name: "Pizza Place",
		Menu: []restaurant.MenuItem{{Item: "Margherita", Price: 10}},
	})
	require.NoError(t, err)

	got, err := rs.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = rs.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, restaurant.ErrNotFound)

	ords := NewOrders(db)
	placed, err := ords.Create(ctx, order.Order{
		RestaurantID: saved.ID,
		Items:        []order.Line{{Item: "Margherita", Quantity: 2}},
		Total:        20,
	})
	require.NoError(t, err)

	list, err := ords.List(ctx)
	require.NoError(t, err)
	var found *order.Detail
	for i := range list {
		if list[i].ID == placed.ID {
			found = &list[i]
		}
	}
	require.NotNil(t, found)
	require.NotNil(t, found.Restaurant)
	assert.Equal(t, "Pizza Place", found.Restaurant.Name)
	assert.Equal(t, 20.0, found.Total)
}

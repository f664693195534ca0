package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuflow/pkg/logger"
	"menuflow/pkg/order"
	"menuflow/pkg/pricing"
	"menuflow/pkg/restaurant"
	"menuflow/pkg/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	restaurants := restaurant.NewService(store.Restaurants())
	orders := order.NewService(store.Orders(), pricing.New(restaurants), nil, log)
	srv := httptest.NewServer(NewRouter(NewHandlers(restaurants, orders, log), nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func createPizzaPlace(t *testing.T, srv *httptest.Server) restaurant.Restaurant {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/restaurants",
		`{"name":"Pizza Place","menu":[{"item":"Margherita","price":10},{"item":"Pepperoni","price":12}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var r restaurant.Restaurant
	require.NoError(t, json.Unmarshal(body, &r))
	return r
}

func message(t *testing.T, body []byte) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Message
}

func listOrders(t *testing.T, srv *httptest.Server) []map[string]any {
	t.Helper()
	resp, body := do(t, srv, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCreateAndListRestaurants(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/restaurants", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	r := createPizzaPlace(t, srv)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Pizza Place", r.Name)

	resp, body = do(t, srv, http.MethodGet, "/restaurants", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":"`+r.ID+`","name":"Pizza Place","menu":[{"item":"Margherita","price":10},{"item":"Pepperoni","price":12}]}]`, string(body))
}

func TestCreateRestaurantValidation(t *testing.T) {
	srv := newTestServer(t)
	bodies := []string{
		``,
		`not json`,
		`{}`,
		`{"name":""}`,
		`{"name":"X","menu":[{"price":1}]}`,
		`{"name":"X","menu":[{"item":"A"}]}`,
		`{"name":"X","menu":[{"item":"A","price":"ten"}]}`,
	}
	for _, b := range bodies {
		resp, body := do(t, srv, http.MethodPost, "/restaurants", b)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, b)
		assert.NotEmpty(t, message(t, body), b)
	}

	resp, body := do(t, srv, http.MethodGet, "/restaurants", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestCreateRestaurantEmptyMenu(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/restaurants", `{"name":"Bare"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var r map[string]any
	require.NoError(t, json.Unmarshal(body, &r))
	assert.Equal(t, []any{}, r["menu"])
}

func TestPlaceOrderComputesTotal(t *testing.T) {
	srv := newTestServer(t)
	r := createPizzaPlace(t, srv)

	resp, body := do(t, srv, http.MethodPost, "/orders",
		`{"restaurantId":"`+r.ID+`","items":[{"item":"Margherita","quantity":2},{"item":"Pepperoni","quantity":1}],"total":1}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var o order.Order
	require.NoError(t, json.Unmarshal(body, &o))
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, r.ID, o.RestaurantID)
	assert.Equal(t, 32.0, o.Total)
	assert.Len(t, o.Items, 2)

	orders := listOrders(t, srv)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0]["id"])
	assert.EqualValues(t, 32, orders[0]["total"])
	joined, ok := orders[0]["restaurantId"].(map[string]any)
	require.True(t, ok, "restaurantId should be the full restaurant object")
	assert.Equal(t, r.ID, joined["id"])
	assert.Equal(t, "Pizza Place", joined["name"])
	assert.Len(t, joined["menu"], 2)
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	srv := newTestServer(t)
	r := createPizzaPlace(t, srv)

	resp, body := do(t, srv, http.MethodPost, "/orders",
		`{"restaurantId":"`+r.ID+`","items":[{"item":"Hawaiian","quantity":1}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Item Hawaiian not found in restaurant menu.", message(t, body))
	assert.Empty(t, listOrders(t, srv))
}

func TestPlaceOrderUnknownRestaurant(t *testing.T) {
	srv := newTestServer(t)
	createPizzaPlace(t, srv)

	resp, body := do(t, srv, http.MethodPost, "/orders",
		`{"restaurantId":"64b7f0c2a1b2c3d4e5f60718","items":[{"item":"Margherita","quantity":1}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, message(t, body), "not found")
	assert.Empty(t, listOrders(t, srv))
}

func TestPlaceOrderEmptyMenu(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, srv, http.MethodPost, "/restaurants", `{"name":"Bare","menu":[]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var r restaurant.Restaurant
	require.NoError(t, json.Unmarshal(body, &r))

	for _, item := range []string{"Margherita", "Water"} {
		resp, _ := do(t, srv, http.MethodPost, "/orders",
			`{"restaurantId":"`+r.ID+`","items":[{"item":"`+item+`","quantity":1}]}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, item)
	}
	assert.Empty(t, listOrders(t, srv))
}

func TestPlaceOrderTotalOverflow(t *testing.T) {
	srv := newTestServer(t)
	resp, body := do(t, srv, http.MethodPost, "/restaurants", `{"name":"Big","menu":[{"item":"Gold","price":1e308}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var r restaurant.Restaurant
	require.NoError(t, json.Unmarshal(body, &r))

	resp, body = do(t, srv, http.MethodPost, "/orders",
		`{"restaurantId":"`+r.ID+`","items":[{"item":"Gold","quantity":10}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	assert.NotEmpty(t, message(t, body))
	assert.Empty(t, listOrders(t, srv))
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, order.Order{ID: "x", Total: math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, message(t, rec.Body.Bytes()))
}

func TestPlaceOrderValidation(t *testing.T) {
	srv := newTestServer(t)
	r := createPizzaPlace(t, srv)
	bodies := []string{
		`{`,
		`{"items":[{"item":"Margherita","quantity":1}]}`,
		`{"restaurantId":"` + r.ID + `","items":[{"quantity":1}]}`,
		`{"restaurantId":"` + r.ID + `","items":[{"item":"Margherita"}]}`,
		`{"restaurantId":"` + r.ID + `","items":[{"item":"Margherita","quantity":"two"}]}`,
	}
	for _, b := range bodies {
		resp, _ := do(t, srv, http.MethodPost, "/orders", b)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, b)
	}
	assert.Empty(t, listOrders(t, srv))
}

func TestOrderListsDanglingRestaurantAsNull(t *testing.T) {
	store := memory.New()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	restaurants := restaurant.NewService(store.Restaurants())
	orders := order.NewService(store.Orders(), pricing.New(restaurants), nil, log)
	srv := httptest.NewServer(NewRouter(NewHandlers(restaurants, orders, log), nil))
	defer srv.Close()

	_, err := store.Orders().Create(context.Background(), order.Order{RestaurantID: "deleted", Total: 3})
	require.NoError(t, err)

	got := listOrders(t, srv)
	require.Len(t, got, 1)
	assert.Nil(t, got[0]["restaurantId"])
}

type failingRestaurants struct{}

func (failingRestaurants) Create(context.Context, restaurant.Candidate) (restaurant.Restaurant, error) {
	return restaurant.Restaurant{}, errors.New("unreachable")
}

func (failingRestaurants) List(context.Context) ([]restaurant.Restaurant, error) {
	return nil, errors.New("unreachable")
}

type failingOrders struct{}

func (failingOrders) Place(context.Context, order.PlaceRequest) (order.Order, error) {
	return order.Order{}, errors.New("unreachable")
}

func (failingOrders) List(context.Context) ([]order.Detail, error) {
	return nil, errors.New("unreachable")
}

func TestStorageFailuresReturn500(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	srv := httptest.NewServer(NewRouter(NewHandlers(failingRestaurants{}, failingOrders{}, log), nil))
	defer srv.Close()

	for _, path := range []string{"/restaurants", "/orders"} {
		resp, body := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		assert.Equal(t, "unreachable", message(t, body))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodDelete, "/orders", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

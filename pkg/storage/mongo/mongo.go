// Package mongo persists restaurants and orders as MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"menuflow/pkg/order"
	"menuflow/pkg/restaurant"
)

const (
	defaultDatabase       = "restaurant"
	restaurantsCollection = "restaurants"
	ordersCollection      = "orders"
)

// DB is a connected MongoDB database handle.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and pings the primary. The database name is taken from
// the URI path.
func Open(ctx context.Context, uri string) (*DB, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongo uri: %w", err)
	}
	name := cs.Database
	if name == "" {
		name = defaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &DB{client: client, db: client.Database(name)}, nil
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Restaurants returns the restaurant repository.
func (d *DB) Restaurants() *Restaurants {
	return &Restaurants{coll: d.db.Collection(restaurantsCollection)}
}

// Orders returns the order repository.
func (d *DB) Orders() *Orders {
	return &Orders{coll: d.db.Collection(ordersCollection)}
}

type menuItemDoc struct {
	Item  string  `bson:"item"`
	Price float64 `bson:"price"`
}

type restaurantDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Menu []menuItemDoc      `bson:"menu"`
}

func (d restaurantDoc) model() restaurant.Restaurant {
	menu := make([]restaurant.MenuItem, 0, len(d.Menu))
	for _, mi := range d.Menu {
		menu = append(menu, restaurant.MenuItem{Item: mi.Item, Price: mi.Price})
	}
	return restaurant.Restaurant{ID: d.ID.Hex(), Name: d.Name, Menu: menu}
}

type lineDoc struct {
	Item     string  `bson:"item"`
	Quantity float64 `bson:"quantity"`
}

type orderDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RestaurantID primitive.ObjectID `bson:"restaurantId"`
	Items        []lineDoc          `bson:"items"`
	Total        float64            `bson:"total"`
}

// orderView is an order document after $lookup of its restaurant.
type orderView struct {
	orderDoc   `bson:",inline"`
	Restaurant *restaurantDoc `bson:"restaurant,omitempty"`
}

// Restaurants implements restaurant.Repository on a collection.
type Restaurants struct {
	coll *mongo.Collection
}

// Create inserts a new restaurant document.
func (r *Restaurants) Create(ctx context.Context, rs restaurant.Restaurant) (restaurant.Restaurant, error) {
	doc := restaurantDoc{ID: primitive.NewObjectID(), Name: rs.Name, Menu: make([]menuItemDoc, 0, len(rs.Menu))}
	for _, mi := range rs.Menu {
		doc.Menu = append(doc.Menu, menuItemDoc{Item: mi.Item, Price: mi.Price})
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return restaurant.Restaurant{}, err
	}
	return doc.model(), nil
}

// Get finds a restaurant by its hex id. Malformed ids are reported as not found.
func (r *Restaurants) Get(ctx context.Context, id string) (restaurant.Restaurant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}
	var doc restaurantDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	return doc.model(), nil
}

// List returns every restaurant in insertion order.
func (r *Restaurants) List(ctx context.Context) ([]restaurant.Restaurant, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []restaurantDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]restaurant.Restaurant, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// Orders implements order.Repository on a collection.
type Orders struct {
	coll *mongo.Collection
}

// Create inserts a new order document.
func (o *Orders) Create(ctx context.Context, ord order.Order) (order.Order, error) {
	rid, err := primitive.ObjectIDFromHex(ord.RestaurantID)
	if err != nil {
		return order.Order{}, fmt.Errorf("restaurant id %q: %w", ord.RestaurantID, err)
	}
	doc := orderDoc{ID: primitive.NewObjectID(), RestaurantID: rid, Items: make([]lineDoc, 0, len(ord.Items)), Total: ord.Total}
	for _, l := range ord.Items {
		doc.Items = append(doc.Items, lineDoc{Item: l.Item, Quantity: l.Quantity})
	}
	if _, err := o.coll.InsertOne(ctx, doc); err != nil {
		return order.Order{}, err
	}
	ord.ID = doc.ID.Hex()
	return ord, nil
}

// List returns every order in insertion order with its restaurant looked up.
func (o *Orders) List(ctx context.Context) ([]order.Detail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: restaurantsCollection},
			{Key: "localField", Value: "restaurantId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "restaurant"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$restaurant"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
	cur, err := o.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var views []orderView
	if err := cur.All(ctx, &views); err != nil {
		return nil, err
	}
	out := make([]order.Detail, 0, len(views))
	for _, v := range views {
		d := order.Detail{ID: v.ID.Hex(), Items: make([]order.Line, 0, len(v.Items)), Total: v.Total}
		for _, l := range v.Items {
			d.Items = append(d.Items, order.Line{Item: l.Item, Quantity: l.Quantity})
		}
		if v.Restaurant != nil {
			rs := v.Restaurant.model()
			d.Restaurant = &rs
		}
		out = append(out, d)
	}
	return out, nil
}

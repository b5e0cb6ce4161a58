package clothes

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type itemDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Price float64            `bson:"price"`
}

// MongoStore keeps items as {name, price} documents in a single collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return mongoErr("ping", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, it Item) error {
	_, err := s.coll.InsertOne(ctx, itemDoc{Name: it.Name, Price: it.Price})
	if err != nil {
		return mongoErr("insert item", err)
	}
	return nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]Item, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, mongoErr("find items", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make([]Item, 0, 16)
	for cur.Next(ctx) {
		var d itemDoc
		if err := cur.Decode(&d); err != nil {
			return nil, mongoErr("decode item", err)
		}
		out = append(out, Item{ID: d.ID.Hex(), Name: d.Name, Price: d.Price})
	}
	if err := cur.Err(); err != nil {
		return nil, mongoErr("find items", err)
	}
	return out, nil
}

func (s *MongoStore) UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "name", Value: name}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "price", Value: price}}}},
	)
	if err != nil {
		return false, mongoErr("update item", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, mongoErr("delete item", err)
	}
	return res.DeletedCount > 0, nil
}

func mongoErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

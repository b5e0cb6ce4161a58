package clothes

import (
	"context"
	"errors"
)

type Item struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ErrUnavailable marks store failures caused by a timeout or an unreachable
// database, as opposed to errors returned by a healthy server.
var ErrUnavailable = errors.New("store unavailable")

// Store is the persistence accessor for clothing items. UpdatePriceByName and
// DeleteByName act on the first item (in insertion order) whose name matches
// exactly and report whether one matched.
type Store interface {
	Ping(ctx context.Context) error
	Insert(ctx context.Context, it Item) error
	FindAll(ctx context.Context) ([]Item, error)
	UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
}

package clothes

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type timeoutStore struct {
	next Store
	d    time.Duration
}

// WithTimeout bounds every call on next by d. A call that runs out of time
// fails with ErrUnavailable. A non-positive d returns next unchanged.
func WithTimeout(next Store, d time.Duration) Store {
	if d <= 0 {
		return next
	}
	return &timeoutStore{next: next, d: d}
}

func (s *timeoutStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, s.d, func(ctx context.Context) error {
		return s.next.Ping(ctx)
	})
}

func (s *timeoutStore) Insert(ctx context.Context, it Item) error {
	return withTimeout(ctx, s.d, func(ctx context.Context) error {
		return s.next.Insert(ctx, it)
	})
}

func (s *timeoutStore) FindAll(ctx context.Context) ([]Item, error) {
	var out []Item
	err := withTimeout(ctx, s.d, func(ctx context.Context) error {
		var err error
		out, err = s.next.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *timeoutStore) UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error) {
	var ok bool
	err := withTimeout(ctx, s.d, func(ctx context.Context) error {
		var err error
		ok, err = s.next.UpdatePriceByName(ctx, name, price)
		return err
	})
	return ok, err
}

func (s *timeoutStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := withTimeout(ctx, s.d, func(ctx context.Context) error {
		var err error
		ok, err = s.next.DeleteByName(ctx, name)
		return err
	})
	return ok, err
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

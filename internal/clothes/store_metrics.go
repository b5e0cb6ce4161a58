package clothes

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK          = "ok"
	resultNotFound    = "not_found"
	resultUnavailable = "unavailable"
	resultError       = "error"
)

type StoreMetrics struct {
	Ops     *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clothes_store_operations_total",
				Help: "Store operations by result",
			},
			[]string{"op", "result"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "clothes_store_operation_duration_seconds",
				Help: "Store operation latency",
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.Ops, m.Latency)
	return m
}

type instrumentedStore struct {
	next Store
	m    *StoreMetrics
}

// Instrument records the outcome and latency of every call on next.
func Instrument(next Store, m *StoreMetrics) Store {
	if m == nil {
		return next
	}
	return &instrumentedStore{next: next, m: m}
}

func (s *instrumentedStore) observe(op string, start time.Time, matched bool, err error) {
	s.m.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := resultOK
	switch {
	case errors.Is(err, ErrUnavailable):
		result = resultUnavailable
	case err != nil:
		result = resultError
	case !matched:
		result = resultNotFound
	}
	s.m.Ops.WithLabelValues(op, result).Inc()
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, true, err)
	return err
}

func (s *instrumentedStore) Insert(ctx context.Context, it Item) error {
	start := time.Now()
	err := s.next.Insert(ctx, it)
	s.observe("insert", start, true, err)
	return err
}

func (s *instrumentedStore) FindAll(ctx context.Context) ([]Item, error) {
	start := time.Now()
	items, err := s.next.FindAll(ctx)
	s.observe("find_all", start, true, err)
	return items, err
}

func (s *instrumentedStore) UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error) {
	start := time.Now()
	ok, err := s.next.UpdatePriceByName(ctx, name, price)
	s.observe("update", start, ok, err)
	return ok, err
}

func (s *instrumentedStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	ok, err := s.next.DeleteByName(ctx, name)
	s.observe("delete", start, ok, err)
	return ok, err
}

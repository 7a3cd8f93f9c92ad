package mock

import (
	"context"

	"github.com/fwojciec/pricewatch"
)

var _ pricewatch.StateStore = (*StateStore)(nil)

// StateStore is a mock implementation of pricewatch.StateStore.
type StateStore struct {
	GetFn func(ctx context.Context, key string) (string, error)
	PutFn func(ctx context.Context, key, value string) error
}

func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	return s.GetFn(ctx, key)
}

func (s *StateStore) Put(ctx context.Context, key, value string) error {
	return s.PutFn(ctx, key, value)
}

var _ pricewatch.ObservationService = (*ObservationService)(nil)

// ObservationService is a mock implementation of pricewatch.ObservationService.
type ObservationService struct {
	CreateObservationFn func(ctx context.Context, obs *pricewatch.Observation) error
	FindObservationsFn  func(ctx context.Context, filter pricewatch.ObservationFilter) ([]*pricewatch.Observation, error)
}

func (s *ObservationService) CreateObservation(ctx context.Context, obs *pricewatch.Observation) error {
	return s.CreateObservationFn(ctx, obs)
}

func (s *ObservationService) FindObservations(ctx context.Context, filter pricewatch.ObservationFilter) ([]*pricewatch.Observation, error) {
	return s.FindObservationsFn(ctx, filter)
}

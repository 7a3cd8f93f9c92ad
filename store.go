package pricewatch

import (
	"context"
	"time"
)

// StateKey returns the state store key holding the last price of an item.
func StateKey(itemName string) string {
	return "last:" + itemName
}

// StateStore keeps the last observed price of each item as a decimal string.
type StateStore interface {
	// Get returns the value stored under key.
	// Returns ENOTFOUND if nothing is stored.
	Get(ctx context.Context, key string) (string, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error
}

// Observation is one recorded price of an item.
type Observation struct {
	ID          string    `json:"id"`
	ItemName    string    `json:"itemName"`
	URL         string    `json:"url"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	ContentHash string    `json:"contentHash"`
	ObservedAt  time.Time `json:"observedAt"`
}

// Validate returns an error if the observation contains invalid fields.
func (o *Observation) Validate() error {
	if o.ItemName == "" {
		return Errorf(EINVALID, "observation item name required")
	}
	if o.Price < 0 {
		return Errorf(EINVALID, "observation price must not be negative")
	}
	return nil
}

// ObservationService records the price history of items.
type ObservationService interface {
	// CreateObservation records a new observation.
	// ID and ObservedAt are assigned if empty.
	CreateObservation(ctx context.Context, obs *Observation) error

	// FindObservations returns observations matching the filter,
	// newest first.
	FindObservations(ctx context.Context, filter ObservationFilter) ([]*Observation, error)
}

// ObservationFilter represents a filter for FindObservations.
type ObservationFilter struct {
	ItemName *string `json:"itemName"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

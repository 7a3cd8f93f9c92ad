package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pricewatch.ObservationService = (*ObservationService)(nil)

// ObservationService implements pricewatch.ObservationService using SQLite.
type ObservationService struct {
	db *DB
}

// NewObservationService creates a new ObservationService.
func NewObservationService(db *DB) *ObservationService {
	return &ObservationService{db: db}
}

// CreateObservation records a new observation.
func (s *ObservationService) CreateObservation(ctx context.Context, obs *pricewatch.Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}

	if obs.ID == "" {
		obs.ID = uuid.New().String()
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now()
	}
	obs.ObservedAt = obs.ObservedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations (id, item_name, url, price, currency, content_hash, observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, obs.ID, obs.ItemName, obs.URL, obs.Price, obs.Currency, obs.ContentHash, formatTime(obs.ObservedAt))

	return err
}

// FindObservations returns observations matching the filter, newest first.
func (s *ObservationService) FindObservations(ctx context.Context, filter pricewatch.ObservationFilter) ([]*pricewatch.Observation, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, item_name, url, price, currency, content_hash, observed_at FROM observations WHERE 1=1")

	if filter.ItemName != nil {
		query.WriteString(" AND item_name = ?")
		args = append(args, *filter.ItemName)
	}

	query.WriteString(" ORDER BY observed_at DESC, rowid DESC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []*pricewatch.Observation
	for rows.Next() {
		var obs pricewatch.Observation
		var observedAt string

		if err := rows.Scan(&obs.ID, &obs.ItemName, &obs.URL, &obs.Price, &obs.Currency,
			&obs.ContentHash, &observedAt); err != nil {
			return nil, err
		}

		obs.ObservedAt, err = parseTime(observedAt, "observed_at")
		if err != nil {
			return nil, err
		}

		observations = append(observations, &obs)
	}

	return observations, rows.Err()
}

package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pricewatch"
	"github.com/fwojciec/pricewatch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationService_CreateObservation(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamp", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewObservationService(setupTestDB(t))
		obs := &pricewatch.Observation{ItemName: "kettle", URL: "https://shop.example.com/k", Price: 39.99, Currency: "€"}

		err := svc.CreateObservation(context.Background(), obs)

		require.NoError(t, err)
		assert.NotEmpty(t, obs.ID, "ID should be generated")
		assert.False(t, obs.ObservedAt.IsZero(), "ObservedAt should be set")
	})

	t.Run("returns error for invalid observation", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewObservationService(setupTestDB(t))

		err := svc.CreateObservation(context.Background(), &pricewatch.Observation{})

		require.Error(t, err)
		assert.Equal(t, pricewatch.EINVALID, pricewatch.ErrorCode(err))
	})
}

func TestObservationService_FindObservations(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *sqlite.ObservationService) {
		t.Helper()
		base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
		for i, o := range []struct {
			name  string
			price float64
		}{
			{"kettle", 39.99},
			{"toaster", 25},
			{"kettle", 34.50},
			{"kettle", 36},
		} {
			require.NoError(t, svc.CreateObservation(context.Background(), &pricewatch.Observation{
				ItemName:    o.name,
				Price:       o.price,
				Currency:    "€",
				ContentHash: "abc",
				ObservedAt:  base.Add(time.Duration(i) * 24 * time.Hour),
			}))
		}
	}

	t.Run("filters by item and orders newest first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewObservationService(setupTestDB(t))
		seed(t, svc)
		name := "kettle"

		got, err := svc.FindObservations(context.Background(), pricewatch.ObservationFilter{ItemName: &name})

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.InDelta(t, 36.0, got[0].Price, 1e-9)
		assert.InDelta(t, 34.50, got[1].Price, 1e-9)
		assert.InDelta(t, 39.99, got[2].Price, 1e-9)
		assert.Equal(t, "abc", got[0].ContentHash)
		assert.Equal(t, time.Date(2026, 10, 4, 8, 0, 0, 0, time.UTC), got[0].ObservedAt)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewObservationService(setupTestDB(t))
		seed(t, svc)

		got, err := svc.FindObservations(context.Background(), pricewatch.ObservationFilter{Limit: 2, Offset: 1})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "kettle", got[0].ItemName)
		assert.InDelta(t, 34.50, got[0].Price, 1e-9)
		assert.Equal(t, "toaster", got[1].ItemName)
	})

	t.Run("returns empty for unknown item", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewObservationService(setupTestDB(t))
		name := "unknown"

		got, err := svc.FindObservations(context.Background(), pricewatch.ObservationFilter{ItemName: &name})

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

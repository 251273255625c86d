package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

type fakeCatalog struct {
	trips  map[string][]domain.Trip // keyed by yyyy-mm-dd
	routes []domain.Route
}

func (f *fakeCatalog) ListScheduledByDay(_ context.Context, day time.Time) ([]domain.Trip, error) {
	return f.trips[day.Format("2006-01-02")], nil
}

func (f *fakeCatalog) ListRoutes(_ context.Context) ([]domain.Route, error) {
	return f.routes, nil
}

func trip(id int64, from, to string, price int64, status domain.TripStatus) domain.Trip {
	return domain.Trip{
		ID: id,
		Route: domain.Route{
			FromLocation: from,
			ToLocation:   to,
			BasePrice:    price,
		},
		Status: status,
	}
}

func TestSearch(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{trips: map[string][]domain.Trip{
		"2026-03-10": {
			trip(1, "Bến xe Hà Nội", "Đà Nẵng", 500_000, domain.TripScheduled),
			trip(2, "Hà Nội", "Hồ Chí Minh", 700_000, domain.TripScheduled),
			trip(3, "Hà Nội", "Đà Nẵng", 500_000, domain.TripCancelled),
		},
	}}
	svc := New(catalog, nil, Config{})

	t.Run("substring containment tolerates naming variants", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "Hà Nội", "Đà Nẵng", day)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "hà nội", "hồ chí minh", day)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("non-scheduled trips are excluded", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "", "Đà Nẵng", day)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("a day with no trips yields an empty set", func(t *testing.T) {
		got, err := svc.Search(context.Background(), "Hà Nội", "Đà Nẵng", day.AddDate(0, 0, 3))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSearchRoundTrip(t *testing.T) {
	depart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("both legs searched independently", func(t *testing.T) {
		catalog := &fakeCatalog{trips: map[string][]domain.Trip{
			"2026-03-10": {trip(1, "Hà Nội", "Đà Nẵng", 500_000, domain.TripScheduled)},
			"2026-03-15": {trip(2, "Đà Nẵng", "Hà Nội", 500_000, domain.TripScheduled)},
		}}
		svc := New(catalog, nil, Config{})

		got, err := svc.SearchRoundTrip(context.Background(), "Hà Nội", "Đà Nẵng", depart, ret)
		require.NoError(t, err)
		require.Len(t, got.Outbound, 1)
		require.Len(t, got.Return, 1)
		assert.Equal(t, int64(2), got.Return[0].ID)
	})

	t.Run("no reverse route means zero return trips", func(t *testing.T) {
		catalog := &fakeCatalog{trips: map[string][]domain.Trip{
			"2026-03-10": {trip(1, "Hà Nội", "Đà Nẵng", 500_000, domain.TripScheduled)},
		}}
		svc := New(catalog, nil, Config{})

		got, err := svc.SearchRoundTrip(context.Background(), "Hà Nội", "Đà Nẵng", depart, ret)
		require.NoError(t, err)
		require.Len(t, got.Outbound, 1)
		assert.Empty(t, got.Return)
	})
}

func TestRoutes(t *testing.T) {
	catalog := &fakeCatalog{routes: []domain.Route{
		{ID: 1, FromLocation: "Hà Nội", ToLocation: "Đà Nẵng"},
	}}
	svc := New(catalog, nil, Config{})

	routes, err := svc.Routes(context.Background())
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

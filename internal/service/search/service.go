package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nlduyvu/vebus-go/internal/domain"
	redisx "github.com/nlduyvu/vebus-go/internal/redis"
	redisrepo "github.com/nlduyvu/vebus-go/internal/repository/redis"
)

// TripCatalog is the slice of the trip store the search engine reads.
type TripCatalog interface {
	ListScheduledByDay(ctx context.Context, day time.Time) ([]domain.Trip, error)
	ListRoutes(ctx context.Context) ([]domain.Route, error)
}

type Config struct {
	DayCatalogTTL time.Duration
}

type Service struct {
	catalog TripCatalog
	cache   *redisrepo.Cache
	cfg     Config
}

func New(catalog TripCatalog, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.DayCatalogTTL <= 0 {
		cfg.DayCatalogTTL = 30 * time.Second
	}

	return &Service{
		catalog: catalog,
		cache:   cache,
		cfg:     cfg,
	}
}

// RoundTripResult carries the two disjoint result sets of a round-trip
// search. Return being empty means the reverse route does not exist and
// round-trip purchase is blocked.
type RoundTripResult struct {
	Outbound []domain.Trip
	Return   []domain.Trip
}

// Search filters the day's scheduled trips by case-insensitive substring
// containment on both route endpoints. Substring rather than exact match is
// a deliberate tolerance for naming variants ("Hà Nội" vs "Bến xe Hà Nội").
// No pagination; the catalog is assumed to fit in one response.
func (s *Service) Search(ctx context.Context, from, to string, date time.Time) ([]domain.Trip, error) {
	const op = "service.search.Search"

	trips, err := s.dayCatalog(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var out []domain.Trip
	for _, t := range trips {
		if t.Status != domain.TripScheduled {
			continue
		}
		if !containsFold(t.Route.FromLocation, from) || !containsFold(t.Route.ToLocation, to) {
			continue
		}
		out = append(out, t)
	}

	return out, nil
}

// SearchRoundTrip runs the outbound search and a second, fully independent
// search with the endpoints swapped and the return date. It is not a
// reverse-route lookup joined to the outbound result: a route with no
// reverse direction simply yields zero return trips.
func (s *Service) SearchRoundTrip(
	ctx context.Context,
	from, to string,
	date, returnDate time.Time,
) (*RoundTripResult, error) {
	const op = "service.search.SearchRoundTrip"

	outbound, err := s.Search(ctx, from, to, date)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	ret, err := s.Search(ctx, to, from, returnDate)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &RoundTripResult{Outbound: outbound, Return: ret}, nil
}

// Routes lists all routes for search-form population.
func (s *Service) Routes(ctx context.Context) ([]domain.Route, error) {
	const op = "service.search.Routes"

	routes, err := s.catalog.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return routes, nil
}

func (s *Service) dayCatalog(ctx context.Context, day time.Time) ([]domain.Trip, error) {
	if s.cache == nil {
		return s.catalog.ListScheduledByDay(ctx, day)
	}

	key := redisx.KeyTripDay(day.Format("2006-01-02"))

	return redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.DayCatalogTTL,
		func(ctx context.Context) ([]domain.Trip, error) {
			return s.catalog.ListScheduledByDay(ctx, day)
		},
	)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

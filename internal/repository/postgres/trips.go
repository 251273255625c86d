package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

type TripRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TripRepo) With(db DB) *TripRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TripRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const tripColumns = `t.id, t.departure_time, t.arrival_time, t.status, t.available_seats,
       r.id, r.from_location, r.to_location, r.base_price, r.duration_min,
       v.id, v.plate, v.type, v.total_seats,
       d.id, d.name, d.phone`

const tripJoins = `FROM trips t
  JOIN routes r ON r.id = t.route_id
  JOIN vehicles v ON v.id = t.vehicle_id
  JOIN drivers d ON d.id = t.driver_id`

// Get retrieves one trip with its route, vehicle and driver.
//
// Returns repository.ErrNotFound if the trip does not exist.
func (r *TripRepo) Get(ctx context.Context, id int64) (*domain.Trip, error) {
	const op = "postgres.TripRepo.Get"

	db := r.handle()

	row := db.QueryRow(ctx,
		`SELECT `+tripColumns+` `+tripJoins+` WHERE t.id = $1`,
		id,
	)

	t, err := scanTrip(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// List returns the full trip catalog. The catalog is assumed to fit in one
// response; there is no pagination.
func (r *TripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const op = "postgres.TripRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+tripColumns+` `+tripJoins+` ORDER BY t.departure_time`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	return collectTrips(op, rows)
}

// ListScheduledByDay returns scheduled trips departing on the given calendar
// day, in the day's location.
func (r *TripRepo) ListScheduledByDay(ctx context.Context, day time.Time) ([]domain.Trip, error) {
	const op = "postgres.TripRepo.ListScheduledByDay"

	db := r.handle()

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	rows, err := db.Query(ctx,
		`SELECT `+tripColumns+` `+tripJoins+`
		 WHERE t.status = 'scheduled'
		   AND t.departure_time >= $1 AND t.departure_time < $2
		 ORDER BY t.departure_time`,
		start, end,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	return collectTrips(op, rows)
}

func collectTrips(op string, rows pgx.Rows) ([]domain.Trip, error) {
	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return trips, nil
}

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	err := row.Scan(
		&t.ID, &t.DepartureTime, &t.ArrivalTime, &t.Status, &t.AvailableSeats,
		&t.Route.ID, &t.Route.FromLocation, &t.Route.ToLocation,
		&t.Route.BasePrice, &t.Route.DurationMin,
		&t.Vehicle.ID, &t.Vehicle.Plate, &t.Vehicle.Type, &t.Vehicle.TotalSeats,
		&t.Driver.ID, &t.Driver.Name, &t.Driver.Phone,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListRoutes returns all routes, for search-form population.
func (r *TripRepo) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	const op = "postgres.TripRepo.ListRoutes"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, from_location, to_location, base_price, duration_min
		 FROM routes ORDER BY from_location, to_location`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.FromLocation, &rt.ToLocation, &rt.BasePrice, &rt.DurationMin); err != nil {
			return nil, wrapDBErr(op, err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return routes, nil
}

// Package seatmap turns a flat set of trip seats into the physical
// two-floor layout used for rendering and selection.
package seatmap

import (
	"sort"
	"strconv"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

const (
	lowerFloorPrefix = 'A'
	upperFloorPrefix = 'B'

	sleeperRowWidth  = 3 // 2 seats + aisle + 1 seat
	standardRowWidth = 4 // 2 seats + aisle + 2 seats
)

// Seat is one selectable cell in the layout.
type Seat struct {
	domain.TripSeat
	// Selectable is true when the seat accepts a click: available status, or
	// unconditionally in admin view mode.
	Selectable bool
}

// Floor is one vertical panel of seat rows.
type Floor struct {
	Name string // "lower" or "upper"
	Rows [][]Seat
}

// Layout is the derived physical arrangement of a trip's seat map.
type Layout struct {
	RowWidth int
	Floors   []Floor
}

// Derive builds the layout for one trip's seats. Row width is 3 when any
// seat is a bed (sleeper coach), else 4. Seats are sorted by the numeric
// suffix of their seat number and chunked positionally into rows; a sparse
// or renumbered seat set will therefore misalign physically adjacent seats.
// That is a deliberate carry-over of the original behavior, not a defect to
// repair here.
func Derive(seats []domain.TripSeat, adminView bool) Layout {
	width := standardRowWidth
	for _, s := range seats {
		if s.SeatType == domain.SeatBed {
			width = sleeperRowWidth
			break
		}
	}

	var lower, upper []domain.TripSeat
	for _, s := range seats {
		if len(s.SeatNumber) > 0 && s.SeatNumber[0] == upperFloorPrefix {
			upper = append(upper, s)
		} else {
			lower = append(lower, s)
		}
	}

	layout := Layout{RowWidth: width}
	if len(lower) > 0 {
		layout.Floors = append(layout.Floors, Floor{
			Name: "lower",
			Rows: chunk(lower, width, adminView),
		})
	}
	if len(upper) > 0 {
		layout.Floors = append(layout.Floors, Floor{
			Name: "upper",
			Rows: chunk(upper, width, adminView),
		})
	}

	return layout
}

func chunk(seats []domain.TripSeat, width int, adminView bool) [][]Seat {
	sort.SliceStable(seats, func(i, j int) bool {
		return ordinal(seats[i].SeatNumber) < ordinal(seats[j].SeatNumber)
	})

	var rows [][]Seat
	for start := 0; start < len(seats); start += width {
		end := start + width
		if end > len(seats) {
			end = len(seats)
		}

		row := make([]Seat, 0, end-start)
		for _, s := range seats[start:end] {
			row = append(row, Seat{
				TripSeat:   s,
				Selectable: adminView || s.Status == domain.SeatAvailable,
			})
		}
		rows = append(rows, row)
	}

	return rows
}

// ordinal parses the numeric suffix after the floor letter; malformed seat
// numbers sort first.
func ordinal(seatNumber string) int {
	if len(seatNumber) < 2 {
		return 0
	}

	n, err := strconv.Atoi(seatNumber[1:])
	if err != nil {
		return 0
	}

	return n
}

// Generate produces the seat records for a trip that has none yet. Seats are
// numbered A1..An on the lower floor and, when the vehicle's capacity exceeds
// half, B1..Bm on the upper floor. Sleeper vehicles get bed seats.
func Generate(tripID int64, vehicle domain.Vehicle) []domain.TripSeat {
	seatType := domain.SeatStandard
	if vehicle.Type == "sleeper" {
		seatType = domain.SeatBed
	}

	total := vehicle.TotalSeats
	if total <= 0 {
		total = 40
	}

	perFloor := (total + 1) / 2

	seats := make([]domain.TripSeat, 0, total)
	for i := 0; i < total; i++ {
		floor := "A"
		ord := i + 1
		if i >= perFloor {
			floor = "B"
			ord = i - perFloor + 1
		}
		seats = append(seats, domain.TripSeat{
			TripID:     tripID,
			SeatNumber: floor + strconv.Itoa(ord),
			SeatType:   seatType,
			Status:     domain.SeatAvailable,
		})
	}

	return seats
}

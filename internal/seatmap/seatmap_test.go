package seatmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

func makeSeats(floor string, n int, seatType domain.SeatType) []domain.TripSeat {
	seats := make([]domain.TripSeat, 0, n)
	for i := 1; i <= n; i++ {
		seats = append(seats, domain.TripSeat{
			ID:         int64(i),
			TripID:     1,
			SeatNumber: fmt.Sprintf("%s%d", floor, i),
			SeatType:   seatType,
			Status:     domain.SeatAvailable,
		})
	}
	return seats
}

func TestDeriveRowWidth(t *testing.T) {
	t.Run("standard coach chunks rows of four", func(t *testing.T) {
		layout := Derive(makeSeats("A", 20, domain.SeatStandard), false)

		assert.Equal(t, 4, layout.RowWidth)
		require.Len(t, layout.Floors, 1)
		assert.Len(t, layout.Floors[0].Rows, 5)
	})

	t.Run("single bed seat switches the whole layout to sleeper", func(t *testing.T) {
		seats := makeSeats("A", 12, domain.SeatStandard)
		seats[7].SeatType = domain.SeatBed

		layout := Derive(seats, false)

		assert.Equal(t, 3, layout.RowWidth)
		assert.Len(t, layout.Floors[0].Rows, 4)
	})
}

func TestDeriveRowCountProperty(t *testing.T) {
	// ceil(count/rowWidth) rows per floor, for every seat count.
	for count := 1; count <= 25; count++ {
		layout := Derive(makeSeats("A", count, domain.SeatBed), false)

		want := (count + 2) / 3
		require.Len(t, layout.Floors, 1, "count=%d", count)
		assert.Len(t, layout.Floors[0].Rows, want, "count=%d", count)
	}
}

func TestDeriveFloors(t *testing.T) {
	t.Run("lower-only trip renders one floor panel", func(t *testing.T) {
		layout := Derive(makeSeats("A", 8, domain.SeatStandard), false)

		require.Len(t, layout.Floors, 1)
		assert.Equal(t, "lower", layout.Floors[0].Name)
	})

	t.Run("two-floor trip splits on the leading letter", func(t *testing.T) {
		seats := append(makeSeats("A", 8, domain.SeatStandard), makeSeats("B", 8, domain.SeatStandard)...)

		layout := Derive(seats, false)

		require.Len(t, layout.Floors, 2)
		assert.Equal(t, "lower", layout.Floors[0].Name)
		assert.Equal(t, "upper", layout.Floors[1].Name)
		for _, s := range layout.Floors[1].Rows[0] {
			assert.Equal(t, byte('B'), s.SeatNumber[0])
		}
	})
}

func TestDeriveSortsByNumericSuffix(t *testing.T) {
	// "A10" must come after "A2", so the sort is numeric, not lexicographic.
	seats := []domain.TripSeat{
		{SeatNumber: "A10", Status: domain.SeatAvailable},
		{SeatNumber: "A2", Status: domain.SeatAvailable},
		{SeatNumber: "A1", Status: domain.SeatAvailable},
		{SeatNumber: "A21", Status: domain.SeatAvailable},
	}

	layout := Derive(seats, false)

	require.Len(t, layout.Floors, 1)
	var got []string
	for _, row := range layout.Floors[0].Rows {
		for _, s := range row {
			got = append(got, s.SeatNumber)
		}
	}
	assert.Equal(t, []string{"A1", "A2", "A10", "A21"}, got)
}

func TestDeriveSelectable(t *testing.T) {
	seats := makeSeats("A", 4, domain.SeatStandard)
	seats[1].Status = domain.SeatBooked
	seats[2].Status = domain.SeatLocked

	t.Run("passenger view follows seat status", func(t *testing.T) {
		layout := Derive(seats, false)

		row := layout.Floors[0].Rows[0]
		assert.True(t, row[0].Selectable)
		assert.False(t, row[1].Selectable)
		assert.False(t, row[2].Selectable)
		assert.True(t, row[3].Selectable)
	})

	t.Run("admin view is unconditionally interactive", func(t *testing.T) {
		layout := Derive(seats, true)

		for _, s := range layout.Floors[0].Rows[0] {
			assert.True(t, s.Selectable)
		}
	})
}

func TestGenerate(t *testing.T) {
	t.Run("splits capacity across two floors", func(t *testing.T) {
		seats := Generate(7, domain.Vehicle{TotalSeats: 40, Type: "seated"})

		require.Len(t, seats, 40)
		assert.Equal(t, "A1", seats[0].SeatNumber)
		assert.Equal(t, "A20", seats[19].SeatNumber)
		assert.Equal(t, "B1", seats[20].SeatNumber)
		assert.Equal(t, "B20", seats[39].SeatNumber)
		for _, s := range seats {
			assert.Equal(t, domain.SeatStandard, s.SeatType)
			assert.Equal(t, domain.SeatAvailable, s.Status)
			assert.Equal(t, int64(7), s.TripID)
		}
	})

	t.Run("sleeper vehicles get bed seats", func(t *testing.T) {
		seats := Generate(7, domain.Vehicle{TotalSeats: 30, Type: "sleeper"})

		require.Len(t, seats, 30)
		assert.Equal(t, domain.SeatBed, seats[0].SeatType)
	})
}

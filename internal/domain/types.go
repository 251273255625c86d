package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripScheduled TripStatus = "scheduled"
	TripOngoing   TripStatus = "ongoing"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
	SeatLocked    SeatStatus = "locked"
)

type SeatType string

const (
	SeatStandard SeatType = "standard"
	SeatVIP      SeatType = "vip"
	SeatBed      SeatType = "bed"
)

type TicketStatus string

const (
	TicketBooked    TicketStatus = "booked"
	TicketConfirmed TicketStatus = "confirmed"
	TicketCancelled TicketStatus = "cancelled"
)

type BookingMethod string

const (
	BookingOnline  BookingMethod = "online"
	BookingOffline BookingMethod = "offline"
)

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAmount     DiscountType = "amount"
)

type Route struct {
	ID           int64
	FromLocation string
	ToLocation   string
	BasePrice    int64 // VND
	DurationMin  int
}

type Vehicle struct {
	ID         int64
	Plate      string
	Type       string
	TotalSeats int
}

type Driver struct {
	ID    int64
	Name  string
	Phone string
}

type Trip struct {
	ID             int64
	Route          Route
	Vehicle        Vehicle
	Driver         Driver
	DepartureTime  time.Time
	ArrivalTime    time.Time
	Status         TripStatus
	AvailableSeats int
}

// TripSeat is one physical seat on one trip. SeatNumber is a floor letter
// plus ordinal: "A1".."A20" lower floor, "B1".."B20" upper floor.
type TripSeat struct {
	ID         int64
	TripID     int64
	SeatNumber string
	SeatType   SeatType
	Status     SeatStatus
}

// Ticket is the primary artifact of the booking workflow. Tickets issued from
// one checkout transaction share a BookingGroupID; the two legs of a
// round-trip purchase are paired seat-by-seat through LinkedTicketID.
type Ticket struct {
	ID             uuid.UUID
	UserID         int64
	TripID         int64
	TripSeatID     int64
	SeatNumber     string
	Price          int64 // VND
	Status         TicketStatus
	BookingMethod  BookingMethod
	TripType       TripType
	IsReturnTrip   bool
	BookingGroupID *string
	LinkedTicketID *uuid.UUID
	PromotionCode  *string
	BookedAt       time.Time
}

type Payment struct {
	ID             int64
	BookingGroupID string
	Amount         int64
	PaymentMethod  string
	PaymentStatus  PaymentStatus
	TransactionID  string
	PaymentDate    time.Time
}

type PaymentStats struct {
	Pending   int64
	Completed int64
	Failed    int64
	Refunded  int64
	Revenue   int64 // sum of completed amounts
}

type Promotion struct {
	Code                  string
	DiscountType          DiscountType
	DiscountValue         int64
	MinAmount             int64
	MaxDiscount           int64 // caps percentage discounts; 0 means no cap
	UsageLimit            int
	UsedCount             int
	ApplicableToRoundTrip bool
	StartDate             time.Time
	EndDate               time.Time
}

// Active reports whether the promotion window covers now and the usage limit
// is not exhausted.
func (p *Promotion) Active(now time.Time) bool {
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	return p.UsageLimit <= 0 || p.UsedCount < p.UsageLimit
}

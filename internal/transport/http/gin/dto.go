package httpgin

import "time"

type StartPairingRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	TripType   string `json:"trip_type" binding:"required,oneof=one_way round_trip"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
	DepartDate string `json:"depart_date" binding:"required"`
	ReturnDate string `json:"return_date"`
}

type SelectTripRequest struct {
	TripID int64 `json:"trip_id" binding:"required"`
}

type CheckoutSeat struct {
	SeatID     int64  `json:"seat_id" binding:"required"`
	SeatNumber string `json:"seat_number" binding:"required"`
	Price      int64  `json:"price" binding:"required,gt=0"`
}

type CheckoutLeg struct {
	TripID int64          `json:"trip_id" binding:"required"`
	Return bool           `json:"return"`
	Seats  []CheckoutSeat `json:"seats" binding:"required,min=1,dive"`
}

type CheckoutRequest struct {
	UserID        int64         `json:"user_id" binding:"required"`
	TripType      string        `json:"trip_type" binding:"required,oneof=one_way round_trip"`
	Method        string        `json:"method" binding:"required,oneof=online offline"`
	PromotionCode string        `json:"promotion_code"`
	Legs          []CheckoutLeg `json:"legs" binding:"required,min=1,dive"`
}

type CheckoutResponse struct {
	SessionID      string    `json:"session_id"`
	BookingGroupID string    `json:"booking_group_id"`
	TransactionID  string    `json:"transaction_id"`
	Amount         int64     `json:"amount"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type SelectMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

type PaymentIntentResponse struct {
	SessionID   string `json:"session_id"`
	State       string `json:"state"`
	RedirectURL string `json:"redirect_url"`
	QRPayload   string `json:"qr_payload"`
}

type CallbackResponse struct {
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

type RetryPaymentResponse struct {
	SessionID string    `json:"session_id"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ForceSeatRequest struct {
	Status string `json:"status" binding:"required,oneof=available booked locked"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// PartialFailureResponse enumerates which tickets of a failed checkout
// fan-out did get created, so the caller is never left guessing at the
// store's state.
type PartialFailureResponse struct {
	Error     string   `json:"error"`
	Succeeded []string `json:"succeeded_ticket_ids"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

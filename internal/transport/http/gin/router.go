package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/nlduyvu/vebus-go/internal/domain"
	"github.com/nlduyvu/vebus-go/internal/provider"
	redisrepo "github.com/nlduyvu/vebus-go/internal/repository/redis"
	"github.com/nlduyvu/vebus-go/internal/service"
	"github.com/nlduyvu/vebus-go/internal/service/admin"
	"github.com/nlduyvu/vebus-go/internal/service/booking"
	"github.com/nlduyvu/vebus-go/internal/service/bookingview"
	"github.com/nlduyvu/vebus-go/internal/service/pairing"
	"github.com/nlduyvu/vebus-go/internal/service/payment"
	"github.com/nlduyvu/vebus-go/internal/service/seats"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/routes", handleListRoutes(svcs))
	r.GET("/trips", handleListTrips(svcs))
	r.GET("/trips/search", handleSearch(svcs))
	r.GET("/trips/search/round", handleSearchRoundTrip(svcs))
	r.GET("/trips/:id/seats", handleSeatLayout(svcs))

	r.POST("/pairing", handleStartPairing(svcs))
	r.GET("/pairing/:id", handleGetPairing(svcs))
	r.GET("/pairing/:id/preview", handlePairingPreview(svcs))
	r.POST("/pairing/:id/outbound", handleSelectOutbound(svcs))
	r.DELETE("/pairing/:id/outbound", handleResetOutbound(svcs))
	r.POST("/pairing/:id/return", handleSelectReturn(svcs))
	r.POST("/pairing/:id/continue", handleContinuePairing(svcs))

	r.POST("/checkout", handleCheckout(svcs, idem, limiter))

	r.GET("/payment/callback", handlePaymentCallback(svcs))
	r.GET("/payment/:id", handleGetPayment(svcs))
	r.POST("/payment/:id/method", handleSelectMethod(svcs))
	r.POST("/payment/:id/cancel", handleCancelPayment(svcs))

	r.GET("/bookings", handleListBookings(svcs))
	r.GET("/bookings/:group", handleGetBooking(svcs))
	r.GET("/bookings/:group/invoice", handleInvoice(svcs))
	r.GET("/bookings/:group/invoice.pdf", handleInvoicePDF(svcs))
	r.POST("/bookings/:group/retry", handleRetryPayment(svcs))
	r.POST("/bookings/:group/cancel", handleCancelBooking(svcs))

	// Admin-API
	// TODO: add admin auth middleware once the operator console ships
	adm := r.Group("/admin")
	{
		adm.GET("/payments", handleListPayments(svcs))
		adm.GET("/payments/stats", handlePaymentStats(svcs))
		adm.POST("/payments/:id/refund", handleRefund(svcs))
		adm.POST("/trips/:id/seats/:seat_id/force", handleForceSeat(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List routes
// @Success  200  {array}  domain.Route
// @Router   /routes [get]
func handleListRoutes(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes, err := svcs.Search.Routes(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, routes, "public, max-age=60", true)
	}
}

// @Summary  Day catalog of scheduled trips
// @Param    date  query  string  true  "YYYY-MM-DD"
// @Success  200  {array}  domain.Trip
// @Router   /trips [get]
func handleListTrips(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := parseDateQuery(c, "date")
		if !ok {
			return
		}
		// Empty endpoints match every route, so this is the full day catalog.
		trips, err := svcs.Search.Search(c.Request.Context(), "", "", date)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, trips, "public, max-age=15", true)
	}
}

// @Summary  Search trips
// @Param    from  query  string  true  "departure location"
// @Param    to    query  string  true  "arrival location"
// @Param    date  query  string  true  "YYYY-MM-DD"
// @Success  200  {array}  domain.Trip
// @Router   /trips/search [get]
func handleSearch(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := parseDateQuery(c, "date")
		if !ok {
			return
		}
		trips, err := svcs.Search.Search(
			c.Request.Context(),
			c.Query("from"),
			c.Query("to"),
			date,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, trips, "public, max-age=15", true)
	}
}

// @Summary  Search a round-trip pair
// @Param    from         query  string  true  "departure location"
// @Param    to           query  string  true  "arrival location"
// @Param    date         query  string  true  "YYYY-MM-DD"
// @Param    return_date  query  string  true  "YYYY-MM-DD"
// @Success  200  {object}  search.RoundTripResult
// @Router   /trips/search/round [get]
func handleSearchRoundTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := parseDateQuery(c, "date")
		if !ok {
			return
		}
		returnDate, ok := parseDateQuery(c, "return_date")
		if !ok {
			return
		}
		res, err := svcs.Search.SearchRoundTrip(
			c.Request.Context(),
			c.Query("from"),
			c.Query("to"),
			date,
			returnDate,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, res, "public, max-age=15", true)
	}
}

// @Summary  Trip seat layout
// @Param    id    path   int     true   "Trip ID"
// @Param    view  query  string  false  "admin"
// @Success  200  {object}  seatmap.Layout
// @Failure  404  {object}  ErrorResponse
// @Router   /trips/{id}/seats [get]
func handleSeatLayout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		layout, err := svcs.Seats.Layout(c.Request.Context(), tripID, c.Query("view") == "admin")
		if err != nil {
			respondErr(c, err)
			return
		}
		// Seat maps change on every booking; keep the client cache short.
		writeJSONWithCache(c, http.StatusOK, layout, "public, max-age=5", true)
	}
}

// @Summary  Start a pairing session
// @Param    req body  StartPairingRequest true "payload"
// @Success  201 {object} pairing.Session
// @Failure  400 {object} ErrorResponse
// @Router   /pairing [post]
func handleStartPairing(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartPairingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		departDate, err := parseDate(req.DepartDate)
		if err != nil {
			badRequest(c, "invalid depart_date (YYYY-MM-DD)")
			return
		}
		var returnDate time.Time
		if req.TripType == string(domain.TripRoundTrip) {
			if returnDate, err = parseDate(req.ReturnDate); err != nil {
				badRequest(c, "invalid return_date (YYYY-MM-DD)")
				return
			}
		}
		session, err := svcs.Pairing.Start(
			c.Request.Context(),
			req.UserID,
			domain.TripType(req.TripType),
			req.From,
			req.To,
			departDate,
			returnDate,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

// @Summary  Get pairing session
// @Param    id  path  string  true  "Session ID"
// @Success  200 {object} pairing.Session
// @Router   /pairing/{id} [get]
func handleGetPairing(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svcs.Pairing.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// @Summary  Round-trip price preview
// @Param    id  path  string  true  "Session ID"
// @Success  200 {object} pricing.Preview
// @Router   /pairing/{id}/preview [get]
func handlePairingPreview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		preview, err := svcs.Pairing.Preview(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	}
}

// @Summary  Select the outbound trip
// @Param    id  path  string  true  "Session ID"
// @Param    req body  SelectTripRequest true "payload"
// @Success  200 {object} map[string]any "session plus revealed return trips"
// @Router   /pairing/{id}/outbound [post]
func handleSelectOutbound(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectTripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		session, returnTrips, err := svcs.Pairing.SelectOutbound(
			c.Request.Context(),
			c.Param("id"),
			req.TripID,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session":      session,
			"return_trips": returnTrips,
		})
	}
}

// @Summary  Reset the outbound selection (clears both slots)
// @Param    id  path  string  true  "Session ID"
// @Success  200 {object} pairing.Session
// @Router   /pairing/{id}/outbound [delete]
func handleResetOutbound(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svcs.Pairing.ResetOutbound(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// @Summary  Select the return trip
// @Param    id  path  string  true  "Session ID"
// @Param    req body  SelectTripRequest true "payload"
// @Success  200 {object} pairing.Session
// @Router   /pairing/{id}/return [post]
func handleSelectReturn(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectTripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		session, err := svcs.Pairing.SelectReturn(c.Request.Context(), c.Param("id"), req.TripID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// @Summary  Hand off to seat selection
// @Param    id  path  string  true  "Session ID"
// @Success  200 {object} pairing.Handoff
// @Failure  409 {object} ErrorResponse "a required slot is empty"
// @Router   /pairing/{id}/continue [post]
func handleContinuePairing(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		handoff, err := svcs.Pairing.Continue(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, handoff)
	}
}

// @Summary  Checkout (idempotent)
// @Param    req body  CheckoutRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} CheckoutResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "seat taken / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /checkout [post]
func handleCheckout(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if limiter != nil {
			allowed, _, retryAfter, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
			if err == nil && !allowed {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemCheckout(req.UserID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		session, err := svcs.Booking.Checkout(c.Request.Context(), toCheckoutRequest(&req))
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := CheckoutResponse{
			SessionID:      session.ID.String(),
			BookingGroupID: session.BookingGroupID,
			TransactionID:  session.TransactionID,
			Amount:         session.Amount,
			ExpiresAt:      session.ExpiresAt,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

func toCheckoutRequest(req *CheckoutRequest) *booking.CheckoutRequest {
	out := &booking.CheckoutRequest{
		UserID:        req.UserID,
		TripType:      domain.TripType(req.TripType),
		Method:        domain.BookingMethod(req.Method),
		PromotionCode: req.PromotionCode,
	}
	for _, leg := range req.Legs {
		l := booking.Leg{TripID: leg.TripID, Return: leg.Return}
		for _, s := range leg.Seats {
			l.Seats = append(l.Seats, booking.SeatSelection{
				SeatID:     s.SeatID,
				SeatNumber: s.SeatNumber,
				Price:      s.Price,
			})
		}
		out.Legs = append(out.Legs, l)
	}
	return out
}

// @Summary  Get payment session
// @Param    id  path  string  true  "Session ID"
// @Success  200 {object} domain.BookingSession
// @Failure  410 {object} ErrorResponse "window expired"
// @Router   /payment/{id} [get]
func handleGetPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svcs.Payment.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// @Summary  Select payment method
// @Param    id  path  string  true  "Session ID"
// @Param    req body  SelectMethodRequest true "payload"
// @Success  200 {object} PaymentIntentResponse
// @Router   /payment/{id}/method [post]
func handleSelectMethod(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		intent, err := svcs.Payment.SelectMethod(c.Request.Context(), c.Param("id"), req.Method)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, PaymentIntentResponse{
			SessionID:   intent.Session.ID.String(),
			State:       string(intent.Session.State),
			RedirectURL: intent.RedirectURL,
			QRPayload:   intent.QRPayload,
		})
	}
}

// @Summary  Provider payment callback
// @Success  200 {object} CallbackResponse
// @Failure  409 {object} ErrorResponse "session already finalized"
// @Router   /payment/callback [get]
func handlePaymentCallback(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := svcs.Payment.Callback(c.Request.Context(), c.Request.URL.Query())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, CallbackResponse{
			Confirmed: outcome.Confirmed,
			Message:   outcome.Message,
			Warning:   outcome.Warning,
		})
	}
}

// @Summary  Cancel payment session
// @Param    id  path  string  true  "Session ID"
// @Success  204
// @Router   /payment/{id}/cancel [post]
func handleCancelPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Payment.Cancel(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Grouped bookings of a user
// @Param    user_id  query  int  true  "User ID"
// @Success  200 {array} bookingview.Booking
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid user_id")
			return
		}
		bookings, err := svcs.BookingView.Bookings(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
	}
}

// @Summary  Booking detail view
// @Param    group  path  string  true  "Booking group ID"
// @Success  200 {object} bookingview.Detail
// @Router   /bookings/{group} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svcs.BookingView.Get(c.Request.Context(), c.Param("group"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// @Summary  Booking invoice (confirmed only)
// @Param    group  path  string  true  "Booking group ID"
// @Success  200 {object} bookingview.Invoice
// @Failure  409 {object} ErrorResponse "booking not confirmed"
// @Router   /bookings/{group}/invoice [get]
func handleInvoice(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		inv, err := svcs.BookingView.Invoice(c.Request.Context(), c.Param("group"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// @Summary  Booking invoice as PDF
// @Param    group  path  string  true  "Booking group ID"
// @Success  200  {file}  binary
// @Router   /bookings/{group}/invoice.pdf [get]
func handleInvoicePDF(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, filename, err := svcs.BookingView.InvoicePDF(c.Request.Context(), c.Param("group"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/pdf", data)
	}
}

// @Summary  Retry payment for a booked group
// @Param    group  path  string  true  "Booking group ID"
// @Success  201 {object} RetryPaymentResponse
// @Failure  409 {object} ErrorResponse "nothing left to pay"
// @Router   /bookings/{group}/retry [post]
func handleRetryPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svcs.BookingView.RetryPayment(c.Request.Context(), c.Param("group"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, RetryPaymentResponse{
			SessionID: session.ID.String(),
			Amount:    session.Amount,
			ExpiresAt: session.ExpiresAt,
		})
	}
}

// @Summary  Cancel every booked ticket of a group
// @Param    group  path  string  true  "Booking group ID"
// @Success  204
// @Router   /bookings/{group}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.BookingView.Cancel(c.Request.Context(), c.Param("group")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List payments
// @Success  200 {array} domain.Payment
// @Router   /admin/payments [get]
func handleListPayments(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := svcs.Admin.ListPayments(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

// @Summary  Payment stats
// @Success  200 {object} domain.PaymentStats
// @Router   /admin/payments/stats [get]
func handlePaymentStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svcs.Admin.PaymentStats(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// @Summary  Refund a completed payment
// @Param    id  path  int  true  "Payment ID"
// @Success  204
// @Failure  409 {object} ErrorResponse "payment not refundable"
// @Router   /admin/payments/{id}/refund [post]
func handleRefund(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Admin.RefundPayment(c.Request.Context(), paymentID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Force a seat status
// @Param    id       path  int  true  "Trip ID"
// @Param    seat_id  path  int  true  "Seat ID"
// @Param    req body  ForceSeatRequest true "payload"
// @Success  204
// @Router   /admin/trips/{id}/seats/{seat_id}/force [post]
func handleForceSeat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		seatID, ok := parseInt64Param(c, "seat_id")
		if !ok {
			return
		}
		var req ForceSeatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Admin.ForceSeatStatus(
			c.Request.Context(),
			tripID,
			seatID,
			domain.SeatStatus(req.Status),
		); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	d, err := parseDate(c.Query(name))
	if err != nil {
		badRequest(c, "invalid "+name+" (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return d, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var partial *booking.PartialFailureError
	if errors.As(err, &partial) {
		resp := PartialFailureResponse{Error: "booking partially applied"}
		for _, id := range partial.Succeeded {
			resp.Succeeded = append(resp.Succeeded, id.String())
		}
		c.JSON(http.StatusConflict, resp)
		return
	}

	switch {
	// seats service
	case errors.Is(err, seats.ErrTripNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "trip not found"})
	// pairing service
	case errors.Is(err, pairing.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "pairing session not found"})
	case errors.Is(err, pairing.ErrTripNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "trip not found"})
	case errors.Is(err, pairing.ErrNotRoundTrip):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "session is not a round trip"})
	case errors.Is(err, pairing.ErrOutboundEmpty):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "outbound trip not selected"})
	case errors.Is(err, pairing.ErrReturnEmpty):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "return trip not selected"})
	case errors.Is(err, pairing.ErrNoReturnTrips):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no return trips for the reverse route"})
	// booking service
	case errors.Is(err, booking.ErrNoSeatsSelected):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no seats selected"})
	case errors.Is(err, booking.ErrBadLegs):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "leg set does not match trip type"})
	case errors.Is(err, booking.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat unavailable"})
	case errors.Is(err, booking.ErrPromotionInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "promotion code invalid or expired"})
	// payment service
	case errors.Is(err, payment.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "payment session not found"})
	case errors.Is(err, payment.ErrSessionExpired):
		c.JSON(http.StatusGone, ErrorResponse{Error: "payment window expired"})
	case errors.Is(err, payment.ErrSessionFinalized):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "payment session already finalized"})
	case errors.Is(err, payment.ErrBadState):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "action not valid in current session state"})
	case errors.Is(err, payment.ErrConfirmFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "ticket confirmation failed"})
	case errors.Is(err, provider.ErrUnknownProvider):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown payment provider"})
	// booking view
	case errors.Is(err, bookingview.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
	case errors.Is(err, bookingview.ErrNotConfirmed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking is not confirmed"})
	case errors.Is(err, bookingview.ErrNotRetryable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking has no payable tickets"})
	case errors.Is(err, bookingview.ErrNotCancellable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking has no cancellable tickets"})
	// admin service
	case errors.Is(err, admin.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "payment not found"})
	case errors.Is(err, admin.ErrNotRefundable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "payment is not refundable"})
	case errors.Is(err, admin.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "seat not found"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

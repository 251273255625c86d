package redisx

import "fmt"

const ns = "vebus:v1"

func KeyTripDay(day string) string {
	return fmt.Sprintf("%s:trips:day:%s", ns, day)
}

func KeyTripSeatMap(tripID int64) string {
	return fmt.Sprintf("%s:trip:%d:seatmap", ns, tripID)
}

func KeyBookingSession(id string) string {
	return fmt.Sprintf("%s:session:booking:%s", ns, id)
}

func KeySessionByTxn(transactionID string) string {
	return fmt.Sprintf("%s:session:txn:%s", ns, transactionID)
}

func KeyPairingSession(id string) string {
	return fmt.Sprintf("%s:session:pairing:%s", ns, id)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelTripsChanged() string {
	return ns + ":trips:changed"
}

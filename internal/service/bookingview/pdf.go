package bookingview

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

// InvoicePDF renders the confirmed booking's invoice as an A4 PDF and
// returns the bytes plus a download filename.
func (s *Service) InvoicePDF(ctx context.Context, groupID string) ([]byte, string, error) {
	const op = "service.bookingview.InvoicePDF"

	inv, err := s.Invoice(ctx, groupID)
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	data, err := buildInvoicePDF(inv)
	if err != nil {
		return nil, "", fmt.Errorf("%s:%w", op, err)
	}

	filename := fmt.Sprintf("INVOICE_%s.pdf", inv.GroupID)
	return data, filename, nil
}

func buildInvoicePDF(inv *Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Booking     : "+inv.GroupID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued      : "+inv.IssuedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	writeLeg(pdf, "Outbound", inv.OutboundTrip, inv.Outbound)
	if len(inv.Return) > 0 {
		writeLeg(pdf, "Return", inv.ReturnTrip, inv.Return)
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Subtotal: "+formatVND(inv.Subtotal))
	pdf.Ln(6)
	if inv.RoundTripDiscount > 0 {
		pdf.Cell(0, 6, "Round-trip discount (10%): -"+formatVND(inv.RoundTripDiscount))
		pdf.Ln(6)
	}
	if inv.PromotionDiscount > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Promotion %s: -%s", inv.PromotionCode, formatVND(inv.PromotionDiscount)))
		pdf.Ln(6)
	}
	if inv.OnlineDiscount > 0 {
		pdf.Cell(0, 6, "Online payment discount (2%): -"+formatVND(inv.OnlineDiscount))
		pdf.Ln(6)
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatVND(inv.Total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLeg(pdf *gofpdf.Fpdf, title string, trip *domain.Trip, tickets []domain.Ticket) {
	pdf.SetFont("Helvetica", "B", 12)
	header := title
	if trip != nil {
		header = fmt.Sprintf("%s: %s -> %s, %s",
			title, trip.Route.FromLocation, trip.Route.ToLocation,
			trip.DepartureTime.Format("2006-01-02 15:04"))
	}
	pdf.Cell(0, 7, header)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, t := range tickets {
		pdf.Cell(0, 6, fmt.Sprintf("%d) Seat %s  %s", i+1, t.SeatNumber, formatVND(t.Price)))
		pdf.Ln(6)
	}
	pdf.Ln(3)
}

// formatVND renders an amount with dot thousand separators, "400.000 VND".
func formatVND(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if amount < 0 {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + " VND"
}

package tickets

import (
	"bytes"
	"fmt"
	"strings"

	"busline/internal/bookings"
	"busline/internal/fleet"
	"busline/internal/trips"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// renderTicketPDF builds the printable e-ticket: trip summary, seat numbers,
// fare, and a QR code carrying the ticket number for boarding validation
func renderTicketPDF(ticket *Ticket, booking *bookings.Booking, trip *trips.Trip, route *fleet.Route) ([]byte, error) {
	qrPNG, err := qrcode.Encode(ticket.TicketNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "Busline E-Ticket")
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, ticket.TicketNumber)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	writeRow(pdf, "Route", fmt.Sprintf("%s to %s", route.Origin, route.Destination))
	writeRow(pdf, "Departure", trip.DepartureTime.Format("Mon, 02 Jan 2006 15:04"))
	writeRow(pdf, "Arrival", trip.ArrivalTime.Format("Mon, 02 Jan 2006 15:04"))
	writeRow(pdf, "Seats", joinSeats(booking.Seats()))
	writeRow(pdf, "Amount paid", fmt.Sprintf("%.2f", booking.TotalAmount))
	writeRow(pdf, "Issued", ticket.IssuedAt.Format("02 Jan 2006 15:04"))

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("ticket-qr", 150, 40, 45, 45, false, opts, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, "Present this ticket and a valid ID at boarding. Valid only on the day of departure.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, label)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, value)
	pdf.Ln(8)
}

func joinSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, n := range seats {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

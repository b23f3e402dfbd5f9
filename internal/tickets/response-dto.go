package tickets

import (
	"time"

	"github.com/google/uuid"
)

type TicketResponse struct {
	ID           uuid.UUID  `json:"id"`
	BookingID    uuid.UUID  `json:"booking_id"`
	TicketNumber string     `json:"ticket_number"`
	IssuedAt     time.Time  `json:"issued_at"`
	Validated    bool       `json:"validated"`
	ValidatedAt  *time.Time `json:"validated_at,omitempty"`
}

func (t *Ticket) ToResponse() *TicketResponse {
	return &TicketResponse{
		ID:           t.ID,
		BookingID:    t.BookingID,
		TicketNumber: t.TicketNumber,
		IssuedAt:     t.IssuedAt,
		Validated:    t.Validated,
		ValidatedAt:  t.ValidatedAt,
	}
}

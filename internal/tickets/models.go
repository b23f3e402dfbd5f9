package tickets

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is the travel document for a confirmed booking. The unique index on
// BookingID makes issuance exactly-once no matter how many times the
// confirmation path retries.
type Ticket struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	TicketNumber string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"ticket_number"`
	IssuedAt     time.Time  `gorm:"not null" json:"issued_at"`
	Validated    bool       `gorm:"default:false" json:"validated"`
	ValidatedAt  *time.Time `json:"validated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

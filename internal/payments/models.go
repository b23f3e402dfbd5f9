package payments

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment records one charge attempt against a booking. The unique
// transaction id guards against a gateway callback being applied twice.
type Payment struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"booking_id"`
	UserID        uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Method        string        `gorm:"type:varchar(20);not null" json:"method"`
	TransactionID string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

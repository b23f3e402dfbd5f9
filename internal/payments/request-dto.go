package payments

type ProcessPaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Method    string `json:"method" binding:"required,oneof=CARD UPI NETBANKING WALLET"`
}

package bookings

type CreateBookingRequest struct {
	TripID      string `json:"trip_id" binding:"required,uuid"`
	SeatNumbers []int  `json:"seat_numbers" binding:"required,min=1,max=6,dive,min=1"`
}

package fleet

// CreateBusRequest represents a bus registration request
type CreateBusRequest struct {
	PlateNumber string `json:"plate_number" binding:"required,min=3,max=20"`
	BusType     string `json:"bus_type" binding:"max=50"`
	TotalSeats  int    `json:"total_seats" binding:"required,min=1,max=120"`
}

// CreateRouteRequest represents a route creation request
type CreateRouteRequest struct {
	Origin      string  `json:"origin" binding:"required,min=2,max=120"`
	Destination string  `json:"destination" binding:"required,min=2,max=120"`
	DistanceKm  float64 `json:"distance_km" binding:"omitempty,min=0"`
	Fare        float64 `json:"fare" binding:"required,min=0"`
}

// CreateTerminalRequest represents a terminal creation request
type CreateTerminalRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=255"`
	City    string `json:"city" binding:"required,min=2,max=120"`
	Address string `json:"address" binding:"max=500"`
}

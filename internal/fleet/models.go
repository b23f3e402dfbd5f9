package fleet

import (
	"time"

	"github.com/google/uuid"
)

// Terminal is a bus park where trips depart from or arrive at
type Terminal struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	City      string    `gorm:"size:120;not null;index" json:"city"`
	Address   string    `gorm:"size:500" json:"address"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Route is an origin/destination pair with the fare charged per seat
type Route struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Origin      string    `gorm:"size:120;not null;index" json:"origin"`
	Destination string    `gorm:"size:120;not null;index" json:"destination"`
	DistanceKm  float64   `gorm:"check:distance_km >= 0" json:"distance_km"`
	Fare        float64   `gorm:"not null;check:fare >= 0" json:"fare"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Bus is a vehicle owned by an operator; its seat count becomes the capacity
// of every trip it is scheduled on
type Bus struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlateNumber string    `gorm:"size:20;uniqueIndex;not null" json:"plate_number"`
	BusType     string    `gorm:"size:50" json:"bus_type"`
	TotalSeats  int       `gorm:"not null;check:total_seats > 0" json:"total_seats"`
	OperatorID  uuid.UUID `gorm:"type:uuid;index;not null" json:"operator_id"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Terminal) TableName() string { return "terminals" }
func (Route) TableName() string    { return "routes" }
func (Bus) TableName() string      { return "buses" }

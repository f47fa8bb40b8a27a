// internal/models/trip.go
package models

import "gorm.io/gorm"

// Trip statuses. A terminal status (completed/cancelled) is normally paired
// with IsActive=false, but the flag is what quota accounting looks at.
const (
	TripStatusPending   = "pending"
	TripStatusActive    = "active"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
)

type Trip struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"index;not null"` // owning user
	DriverName   string `json:"driver_name"`
	Phone        string `json:"phone"`
	Plate        string `json:"plate"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Status       string `json:"status" gorm:"default:pending"` // pending, active, completed, cancelled
	LastLocation string `json:"last_location"`
	Observations string `json:"observations"`
	Progress     int    `json:"progress"` // 0-100
	// No gorm default tag: gorm would swallow an explicit false on insert.
	// The create path sets true unless the client says otherwise.
	IsActive bool `json:"is_active"`

	Locations []TripLocation `gorm:"foreignKey:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"locations,omitempty"`
}

// ValidTripStatus reports whether s is one of the known trip statuses.
func ValidTripStatus(s string) bool {
	switch s {
	case TripStatusPending, TripStatusActive, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// TripLocation is one point in a trip's location history, reported by the
// driver (or relayed through the extension's location request flow).
type TripLocation struct {
	gorm.Model
	TripID     uint      `json:"trip_id" gorm:"index"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Label      string    `json:"label"` // free-text place name, optional
	Point      []byte    `json:"-" gorm:"type:bytea"` // WKB (little-endian), SRID 4326
	RecordedAt time.Time `json:"recorded_at"`
}

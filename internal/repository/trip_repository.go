package repository

import (
	"gorm.io/gorm"

	"zaplog/internal/models"
)

// TripStats aggregates a user's trips for the dashboard cards.
type TripStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Drivers   int `json:"drivers"` // distinct driver names
}

// TripRepository provides data access for trips and their location history.
type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) GetByID(id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.First(&trip, id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetByUserID returns all of a user's trips, newest first.
func (r *TripRepository) GetByUserID(userID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// ActiveCount counts the user's trips currently flagged active. This is the
// number the free-plan quota is checked against.
func (r *TripRepository) ActiveCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Trip{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *TripRepository) Create(trip *models.Trip) error {
	return r.db.Create(trip).Error
}

// Update applies a partial update and returns the fresh record.
func (r *TripRepository) Update(id uint, updates map[string]interface{}) (*models.Trip, error) {
	if err := r.db.Model(&models.Trip{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete removes a trip by id and reports whether a row was actually deleted.
func (r *TripRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&models.Trip{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Stats derives the aggregate counts from the user's full trip list.
// "Active" here means flagged active and not yet completed, which is what
// the dashboard shows; quota accounting uses ActiveCount instead.
func (r *TripRepository) Stats(userID uint) (TripStats, error) {
	trips, err := r.GetByUserID(userID)
	if err != nil {
		return TripStats{}, err
	}

	stats := TripStats{Total: len(trips)}
	drivers := make(map[string]struct{})
	for _, trip := range trips {
		if trip.IsActive && trip.Status != models.TripStatusCompleted {
			stats.Active++
		}
		if trip.Status == models.TripStatusCompleted {
			stats.Completed++
		}
		drivers[trip.DriverName] = struct{}{}
	}
	stats.Drivers = len(drivers)
	return stats, nil
}

// AddLocation appends a point to a trip's location history.
func (r *TripRepository) AddLocation(loc *models.TripLocation) error {
	return r.db.Create(loc).Error
}

// LocationsByTripID returns a trip's location history, newest first.
func (r *TripRepository) LocationsByTripID(tripID uint) ([]models.TripLocation, error) {
	var locations []models.TripLocation
	err := r.db.Where("trip_id = ?", tripID).
		Order("recorded_at DESC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

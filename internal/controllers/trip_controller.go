package controllers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"zaplog/internal/config"
	"zaplog/internal/models"
	"zaplog/internal/repository"
)

// freePlanActiveTripLimit caps how many trips a free-plan user may have
// flagged active at once. Checked at create time only.
const freePlanActiveTripLimit = 3

type createTripInput struct {
	DriverName   string `json:"driver_name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Plate        string `json:"plate" binding:"required"`
	Origin       string `json:"origin" binding:"required"`
	Destination  string `json:"destination" binding:"required"`
	Status       string `json:"status" binding:"omitempty,oneof=pending active completed cancelled"`
	LastLocation string `json:"last_location"`
	Observations string `json:"observations"`
	Progress     *int   `json:"progress" binding:"omitempty,gte=0,lte=100"`
	IsActive     *bool  `json:"is_active"`
}

// updateTripInput lists the fields a client may change on an existing trip.
// All optional; absent fields are left untouched.
type updateTripInput struct {
	DriverName   *string `json:"driver_name"`
	Phone        *string `json:"phone"`
	Plate        *string `json:"plate"`
	Origin       *string `json:"origin"`
	Destination  *string `json:"destination"`
	Status       *string `json:"status" binding:"omitempty,oneof=pending active completed cancelled"`
	LastLocation *string `json:"last_location"`
	Observations *string `json:"observations"`
	Progress     *int    `json:"progress" binding:"omitempty,gte=0,lte=100"`
	IsActive     *bool   `json:"is_active"`
}

// ListTrips returns the caller's trips, newest first.
func ListTrips(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	trips, err := repository.NewTripRepository(config.DB).GetByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error fetching trips: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// CreateTrip creates a trip owned by the caller, subject to the free-plan
// quota. Any user id in the request body is ignored.
func CreateTrip(c *gin.Context) {
	userID := uint(c.MustGet("user_id").(float64))

	var input createTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := repository.NewUserRepository(config.DB).GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "database error: " + err.Error()})
		}
		return
	}

	trips := repository.NewTripRepository(config.DB)

	// Quota check and insert are not one atomic unit; concurrent creates
	// from the same free user can transiently exceed the limit.
	if user.Plan == models.PlanFree {
		count, err := trips.ActiveCount(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "database error: " + err.Error()})
			return
		}
		if count >= freePlanActiveTripLimit {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "free plan trip limit reached, upgrade to create more trips",
			})
			return
		}
	}

	trip := models.Trip{
		UserID:       userID,
		DriverName:   input.DriverName,
		Phone:        input.Phone,
		Plate:        input.Plate,
		Origin:       input.Origin,
		Destination:  input.Destination,
		Status:       models.TripStatusPending,
		LastLocation: input.LastLocation,
		Observations: input.Observations,
		IsActive:     true,
	}
	if input.Status != "" {
		trip.Status = input.Status
	}
	if input.Progress != nil {
		trip.Progress = *input.Progress
	}
	if input.IsActive != nil {
		trip.IsActive = *input.IsActive
	}

	if err := trips.Create(&trip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create trip: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{"trip_id": trip.ID, "user_id": userID}).Info("trip created")

	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

// UpdateTrip applies a partial update to a trip the caller owns.
func UpdateTrip(c *gin.Context) {
	trips := repository.NewTripRepository(config.DB)

	trip, ok := loadOwnedTrip(c, trips)
	if !ok {
		return
	}

	var input updateTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.DriverName != nil {
		updates["driver_name"] = *input.DriverName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Plate != nil {
		updates["plate"] = *input.Plate
	}
	if input.Origin != nil {
		updates["origin"] = *input.Origin
	}
	if input.Destination != nil {
		updates["destination"] = *input.Destination
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.LastLocation != nil {
		updates["last_location"] = *input.LastLocation
	}
	if input.Observations != nil {
		updates["observations"] = *input.Observations
	}
	if input.Progress != nil {
		updates["progress"] = *input.Progress
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"trip": trip})
		return
	}

	updated, err := trips.Update(trip.ID, updates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update trip: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip": updated})
}

// DeleteTrip removes a trip the caller owns.
func DeleteTrip(c *gin.Context) {
	trips := repository.NewTripRepository(config.DB)

	trip, ok := loadOwnedTrip(c, trips)
	if !ok {
		return
	}

	deleted, err := trips.Delete(trip.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete trip: " + err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "trip not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "trip deleted"})
}

type tripLocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Label     string   `json:"label"`
}

// tripLocationResponse mirrors models.TripLocation with the stored WKB point
// rendered as a GeoJSON string for API output.
type tripLocationResponse struct {
	ID         uint      `json:"ID"`
	TripID     uint      `json:"trip_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Label      string    `json:"label"`
	Geometry   string    `json:"geometry"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AddTripLocation appends a point to an owned trip's location history and
// refreshes the trip's last_location field.
func AddTripLocation(c *gin.Context) {
	trips := repository.NewTripRepository(config.DB)

	trip, ok := loadOwnedTrip(c, trips)
	if !ok {
		return
	}

	var input tripLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	lat, lng := *input.Latitude, *input.Longitude

	point := geom.NewPointFlat(geom.XY, []float64{lng, lat})
	point.SetSRID(4326)
	wkbBytes, err := wkb.Marshal(point, binary.LittleEndian)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not encode location: " + err.Error()})
		return
	}

	loc := models.TripLocation{
		TripID:     trip.ID,
		Latitude:   lat,
		Longitude:  lng,
		Label:      input.Label,
		Point:      wkbBytes,
		RecordedAt: time.Now().UTC(),
	}
	if err := trips.AddLocation(&loc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not save location: " + err.Error()})
		return
	}

	lastLocation := input.Label
	if lastLocation == "" {
		lastLocation = fmt.Sprintf("%.5f,%.5f", lat, lng)
	}
	if _, err := trips.Update(trip.ID, map[string]interface{}{"last_location": lastLocation}); err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("could not refresh trip last_location")
	}

	c.JSON(http.StatusCreated, gin.H{"location": toTripLocationResponse(loc)})
}

// ListTripLocations returns an owned trip's location history, newest first.
func ListTripLocations(c *gin.Context) {
	trips := repository.NewTripRepository(config.DB)

	trip, ok := loadOwnedTrip(c, trips)
	if !ok {
		return
	}

	locations, err := trips.LocationsByTripID(trip.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error fetching locations: " + err.Error()})
		return
	}

	response := make([]tripLocationResponse, 0, len(locations))
	for _, loc := range locations {
		response = append(response, toTripLocationResponse(loc))
	}

	c.JSON(http.StatusOK, gin.H{"locations": response})
}

func toTripLocationResponse(loc models.TripLocation) tripLocationResponse {
	geometry, err := convertWKBToGeoJSON(loc.Point)
	if err != nil {
		logrus.WithError(err).WithField("location_id", loc.ID).Warn("could not decode stored point")
	}
	return tripLocationResponse{
		ID:         loc.ID,
		TripID:     loc.TripID,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		Label:      loc.Label,
		Geometry:   geometry,
		RecordedAt: loc.RecordedAt,
	}
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string.
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// loadOwnedTrip resolves the :id parameter to a trip owned by the caller.
// A trip that exists but belongs to someone else reads as not-found, so
// callers cannot probe for other users' trip ids.
func loadOwnedTrip(c *gin.Context, trips *repository.TripRepository) (*models.Trip, bool) {
	userID := uint(c.MustGet("user_id").(float64))

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "trip not found"})
		return nil, false
	}

	trip, err := trips.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "trip not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "database error: " + err.Error()})
		}
		return nil, false
	}
	if trip.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"message": "trip not found"})
		return nil, false
	}

	return trip, true
}

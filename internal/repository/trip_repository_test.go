package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zaplog/internal/models"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:zaplog_repo_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Trip{}, &models.TripLocation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "x", Name: "Test", Plan: models.PlanFree}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTrip(t *testing.T, db *gorm.DB, userID uint, driver, status string, active bool) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		UserID:      userID,
		DriverName:  driver,
		Phone:       "1",
		Plate:       "A",
		Origin:      "X",
		Destination: "Y",
		Status:      status,
		IsActive:    active,
	}
	if err := db.Create(trip).Error; err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return trip
}

func TestGetByUserIDNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	user := seedUser(t, db, "order@example.com")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 3; i++ {
		trip := seedTrip(t, db, user.ID, fmt.Sprintf("Driver %d", i), models.TripStatusPending, true)
		// Space creation times out so ordering is deterministic.
		db.Model(trip).Update("created_at", base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, trip.ID)
	}

	trips, err := repo.GetByUserID(user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(trips) != 3 {
		t.Fatalf("got %d trips, want 3", len(trips))
	}
	for i, want := range []uint{ids[2], ids[1], ids[0]} {
		if trips[i].ID != want {
			t.Errorf("trips[%d].ID = %d, want %d", i, trips[i].ID, want)
		}
	}
}

func TestActiveCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	user := seedUser(t, db, "count@example.com")
	other := seedUser(t, db, "other@example.com")

	seedTrip(t, db, user.ID, "A", models.TripStatusActive, true)
	seedTrip(t, db, user.ID, "B", models.TripStatusPending, true)
	seedTrip(t, db, user.ID, "C", models.TripStatusCompleted, false)
	seedTrip(t, db, other.ID, "D", models.TripStatusActive, true)

	count, err := repo.ActiveCount(user.ID)
	if err != nil {
		t.Fatalf("ActiveCount: %v", err)
	}
	if count != 2 {
		t.Errorf("ActiveCount = %d, want 2", count)
	}
}

func TestDeleteReportsMissingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	user := seedUser(t, db, "delete@example.com")
	trip := seedTrip(t, db, user.ID, "A", models.TripStatusPending, true)

	deleted, err := repo.Delete(trip.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete existing = (%v, %v), want (true, nil)", deleted, err)
	}

	deleted, err = repo.Delete(trip.ID)
	if err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if deleted {
		t.Error("Delete reported a row removed twice")
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	user := seedUser(t, db, "stats@example.com")

	seedTrip(t, db, user.ID, "Ana", models.TripStatusCompleted, false)
	seedTrip(t, db, user.ID, "Ana", models.TripStatusCompleted, false)
	seedTrip(t, db, user.ID, "Bruno", models.TripStatusActive, true)
	seedTrip(t, db, user.ID, "Clara", models.TripStatusPending, false)

	stats, err := repo.Stats(user.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := TripStats{Total: 4, Active: 1, Completed: 2, Drivers: 3}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := seedUser(t, db, "update@example.com")

	updated, err := repo.Update(user.ID, map[string]interface{}{"plan": models.PlanPro})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Plan != models.PlanPro {
		t.Errorf("plan = %s, want pro", updated.Plan)
	}
	if updated.Email != "update@example.com" {
		t.Errorf("email changed: %s", updated.Email)
	}
}

package services

import (
	"fmt"
	"testing"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points storage.DB at a fresh in-memory database.
func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	storage.PerformMigrations(db)
	storage.DB = db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestUnit(t *testing.T) *models.Unit {
	t.Helper()
	active := true
	unit := models.Unit{
		Name:           "Kubo A",
		BaseRate:       150000,
		BaseOccupancy:  3,
		ExtraGuestRate: 50000,
		MaxOccupancy:   8,
		IsActive:       &active,
	}
	require.NoError(t, storage.DB.Create(&unit).Error)
	return &unit
}

var testPhoneSeq int

func createTestUser(t *testing.T, role string, commissionRate float64) *models.User {
	t.Helper()
	testPhoneSeq++
	user := models.User{
		FirstName:      "Test",
		LastName:       role,
		Email:          fmt.Sprintf("%s%d@example.com", role, testPhoneSeq),
		PhoneNumber:    fmt.Sprintf("639%09d", testPhoneSeq),
		Role:           role,
		CommissionRate: commissionRate,
	}
	require.NoError(t, storage.DB.Create(&user).Error)
	return &user
}

func createTestReservation(t *testing.T, unitID, guestID uint, checkIn, checkOut time.Time, mutate func(*models.Reservation)) *models.Reservation {
	t.Helper()
	reservation := models.Reservation{
		UnitID:          unitID,
		GuestID:         guestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Adults:          2,
		TotalPrice:      300000,
		RequiredDeposit: 1500,
		Balance:         298500,
		Status:          models.ReservationPending,
		PaymentStatus:   models.PaymentUnpaid,
	}
	if mutate != nil {
		mutate(&reservation)
	}
	require.NoError(t, storage.DB.Create(&reservation).Error)
	return &reservation
}

package services

import (
	"time"

	"transient-booking-server/models"

	"gorm.io/gorm"
)

// Allocation-strength filters for availability checks. Creation-time checks use
// TentativeOrConfirmed as a soft block; confirmation-time checks use
// ConfirmedOnly, the authoritative gate. Pending holds never exclude each other.
var (
	ConfirmedOnly        = []string{models.ReservationConfirmed}
	TentativeOrConfirmed = []string{models.ReservationConfirmed, models.ReservationPending}
)

// UnitConflicts returns reservations on the unit whose date range overlaps
// [checkIn, checkOut] inclusively, restricted to the given statuses and
// excluding excludeID (0 to exclude nothing). The db handle may be a
// transaction so confirmation re-checks run inside the atomic step.
func UnitConflicts(db *gorm.DB, unitID uint, checkIn, checkOut time.Time, statuses []string, excludeID uint) ([]models.Reservation, error) {
	var conflicts []models.Reservation
	q := db.Where("unit_id = ? AND status IN ?", unitID, statuses).
		Where("check_in <= ? AND check_out >= ?", DateOnly(checkOut), DateOnly(checkIn))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// ParkingConflicts is the same overlap scan scoped to the single shared parking
// slot: every reservation with hasCar across all units competes for it.
func ParkingConflicts(db *gorm.DB, checkIn, checkOut time.Time, statuses []string, excludeID uint) ([]models.Reservation, error) {
	var conflicts []models.Reservation
	q := db.Where("has_car = ? AND status IN ?", true, statuses).
		Where("check_in <= ? AND check_out >= ?", DateOnly(checkOut), DateOnly(checkIn))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// CheckAvailability reports whether the unit (and, when hasCar, the parking
// slot) is free for the range under the given filter. Returns the specific
// conflict error so callers can surface "dates taken" vs "parking taken".
func CheckAvailability(db *gorm.DB, unitID uint, checkIn, checkOut time.Time, hasCar bool, statuses []string, excludeID uint) error {
	conflicts, err := UnitConflicts(db, unitID, checkIn, checkOut, statuses, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return ErrAvailabilityConflict
	}
	if hasCar {
		parking, err := ParkingConflicts(db, checkIn, checkOut, statuses, excludeID)
		if err != nil {
			return err
		}
		if len(parking) > 0 {
			return ErrParkingConflict
		}
	}
	return nil
}

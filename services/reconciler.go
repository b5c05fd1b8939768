package services

import (
	"errors"
	"fmt"
	"log"
	"math"

	"transient-booking-server/models"
	"transient-booking-server/storage"

	"gorm.io/gorm"
)

// ConfirmationSource identifies which trigger invoked the reconciler. Webhook
// delivery, client polling and manual staff approval can all race to confirm the
// same reservation; they must all go through ConfirmReservation.
type ConfirmationSource string

const (
	SourceWebhook ConfirmationSource = "gateway_webhook"
	SourcePoll    ConfirmationSource = "gateway_poll"
	SourceManual  ConfirmationSource = "manual_approval"
)

// Advisory lock key classes used to serialize confirmations on postgres. Units
// lock on their own id; parking is one global slot.
const (
	lockClassUnit    = 7001
	lockClassParking = 7002
)

// ConfirmReservation is the idempotent pending→confirmed transition. It is safe
// to invoke any number of times for the same id: an already-confirmed
// reservation returns immediately with no further effects, and the commission
// is created at most once.
//
// The re-check against confirmed allocations and the state flip run inside one
// transaction. A conflict is a normal business outcome: for gateway-triggered
// confirmations the reservation lost the race and is cancelled; for manual
// approval it is left pending and the conflict error is returned to staff.
func ConfirmReservation(id uint, source ConfirmationSource) (*models.Reservation, error) {
	var (
		reservation   models.Reservation
		confirmedNow  bool
		lostRace      bool
		raceErr       error
		newCommission *models.Commission
	)

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Idempotence guard: dual delivery (webhook + poll) must be silent.
		if reservation.Status == models.ReservationConfirmed {
			return nil
		}
		if reservation.Status != models.ReservationPending {
			return ErrNotPending
		}

		// Serialize competing confirmations. On postgres the advisory
		// transaction locks make the check-then-update below atomic across
		// server instances; sqlite (tests) has a single writer anyway.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", lockClassUnit, int64(reservation.UnitID)).Error; err != nil {
				return err
			}
			if reservation.HasCar {
				if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", lockClassParking, 0).Error; err != nil {
					return err
				}
			}
			// State may have changed while we waited on the lock.
			if err := tx.First(&reservation, id).Error; err != nil {
				return err
			}
			if reservation.Status == models.ReservationConfirmed {
				return nil
			}
			if reservation.Status != models.ReservationPending {
				return ErrNotPending
			}
		}

		// Authoritative gate: confirmed allocations only. Pending siblings do
		// not block (they will fail here themselves later).
		conflictErr := CheckAvailability(tx, reservation.UnitID, reservation.CheckIn, reservation.CheckOut,
			reservation.HasCar, ConfirmedOnly, reservation.ID)
		if conflictErr != nil {
			if !errors.Is(conflictErr, ErrAvailabilityConflict) && !errors.Is(conflictErr, ErrParkingConflict) {
				return conflictErr
			}
			if source == SourceManual {
				// Staff approval of a doomed hold: leave it pending, report the conflict.
				return conflictErr
			}
			// Gateway-triggered confirmation lost the race; the hold can never
			// be satisfied, so cancel it and commit.
			res := tx.Model(&models.Reservation{}).
				Where("id = ? AND status = ?", reservation.ID, models.ReservationPending).
				Update("status", models.ReservationCancelled)
			if res.Error != nil {
				return res.Error
			}
			lostRace = true
			raceErr = conflictErr
			return tx.First(&reservation, id).Error
		}

		// One-way flip, guarded on current state.
		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", reservation.ID, models.ReservationPending).
			Updates(map[string]interface{}{
				"status":         models.ReservationConfirmed,
				"payment_status": models.PaymentPartial,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another caller got here first within this instance.
			if err := tx.First(&reservation, id).Error; err != nil {
				return err
			}
			if reservation.Status == models.ReservationConfirmed {
				return nil
			}
			return ErrNotPending
		}
		confirmedNow = true

		if reservation.AgentID != nil {
			commission, err := createCommissionOnce(tx, &reservation, *reservation.AgentID)
			if err != nil {
				return err
			}
			newCommission = commission
		}

		return tx.First(&reservation, id).Error
	})

	if txErr != nil {
		return nil, txErr
	}

	// Side effects run after the commit and never roll back the state
	// transition; delivery failures are logged inside the service. An
	// already-confirmed reservation returns silently: duplicate deliveries
	// must not re-notify the guest.
	ns := NewNotificationService()
	if lostRace {
		ns.SendReservationLostNotice(reservation.ID, reservation.GuestID)
		return &reservation, raceErr
	}
	if !confirmedNow {
		return &reservation, nil
	}
	ns.SendConfirmationNotice(reservation.ID, reservation.UnitID, reservation.GuestID)
	if newCommission != nil {
		ns.SendCommissionNotice(newCommission.ID, reservation.ID, newCommission.AgentID, newCommission.Amount)
	}

	log.Printf("reservation %d confirmed via %s", reservation.ID, source)
	return &reservation, nil
}

// createCommissionOnce creates the agent's commission unless one already exists
// for the reservation. The unique index on commissions.reservation_id backs
// this check up at the schema level.
func createCommissionOnce(tx *gorm.DB, reservation *models.Reservation, agentID uint) (*models.Commission, error) {
	var existing models.Commission
	found := tx.Where("reservation_id = ?", reservation.ID).Limit(1).Find(&existing)
	if found.Error != nil {
		return nil, found.Error
	}
	if found.RowsAffected > 0 {
		return nil, nil
	}

	var agent models.User
	if err := tx.First(&agent, agentID).Error; err != nil {
		return nil, fmt.Errorf("loading agent %d: %w", agentID, err)
	}

	commission := models.Commission{
		ReservationID: reservation.ID,
		AgentID:       agentID,
		Amount:        int64(math.Floor(float64(reservation.TotalPrice) * agent.CommissionRate)),
		Status:        models.CommissionPending,
	}
	if err := tx.Create(&commission).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

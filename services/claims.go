package services

import (
	"errors"
	"log"

	"transient-booking-server/models"
	"transient-booking-server/storage"

	"gorm.io/gorm"
)

// SubmitClaim files an agent's request to be credited for a reservation that
// was placed without an agent. Allowed only while the reservation has no agent
// attached and the agent has no other pending claim on it.
func SubmitClaim(reservationID, agentID uint, justification, proofURL string) (*models.ClaimRequest, error) {
	var reservation models.Reservation
	if err := storage.DB.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if reservation.AgentID != nil {
		return nil, ErrClaimNotAllowed
	}

	var existing models.ClaimRequest
	dup := storage.DB.Where("reservation_id = ? AND agent_id = ? AND status = ?",
		reservationID, agentID, models.ClaimPending).Limit(1).Find(&existing)
	if dup.Error != nil {
		return nil, dup.Error
	}
	if dup.RowsAffected > 0 {
		return nil, ErrClaimNotAllowed
	}

	claim := models.ClaimRequest{
		ReservationID: reservationID,
		AgentID:       agentID,
		Justification: justification,
		ProofURL:      proofURL,
		Status:        models.ClaimPending,
	}
	if err := storage.DB.Create(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// ApproveClaim attaches the claiming agent to the reservation and creates the
// single commission, under the same at-most-once guarantee as automatic
// confirmation. The null-guarded agent update makes a second approval attempt
// for the same reservation fail naturally once the first succeeds.
func ApproveClaim(claimID uint) (*models.ClaimRequest, error) {
	var (
		claim         models.ClaimRequest
		newCommission *models.Commission
	)

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&claim, claimID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if claim.Status != models.ClaimPending {
			return ErrAlreadyReviewed
		}

		var reservation models.Reservation
		if err := tx.First(&reservation, claim.ReservationID).Error; err != nil {
			return err
		}

		// agentId, once non-null, is never reassigned.
		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND agent_id IS NULL", claim.ReservationID).
			Update("agent_id", claim.AgentID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrClaimNotAllowed
		}

		commission, err := createCommissionOnce(tx, &reservation, claim.AgentID)
		if err != nil {
			return err
		}
		newCommission = commission

		return tx.Model(&claim).Update("status", models.ClaimApproved).Error
	})

	if txErr != nil {
		return nil, txErr
	}

	ns := NewNotificationService()
	ns.SendClaimResultNotice(claim.ID, claim.ReservationID, claim.AgentID, true)
	if newCommission != nil {
		ns.SendCommissionNotice(newCommission.ID, claim.ReservationID, newCommission.AgentID, newCommission.Amount)
	}

	log.Printf("claim %d approved, agent %d attached to reservation %d", claim.ID, claim.AgentID, claim.ReservationID)
	return &claim, nil
}

// RejectClaim marks the claim rejected. The reservation is not touched.
func RejectClaim(claimID uint, reason string) (*models.ClaimRequest, error) {
	var claim models.ClaimRequest
	if err := storage.DB.First(&claim, claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if claim.Status != models.ClaimPending {
		return nil, ErrAlreadyReviewed
	}

	updates := map[string]interface{}{"status": models.ClaimRejected, "review_note": reason}
	if err := storage.DB.Model(&claim).Updates(updates).Error; err != nil {
		return nil, err
	}

	NewNotificationService().SendClaimResultNotice(claim.ID, claim.ReservationID, claim.AgentID, false)
	return &claim, nil
}

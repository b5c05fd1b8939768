package services

import (
	"testing"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitClaim(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	agent := createTestUser(t, "agent", 0.05)
	reservation := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.June, 1), date(2026, time.June, 3), nil)

	claim, err := SubmitClaim(reservation.ID, agent.ID, "walk-in I referred", "https://example.com/proof.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, claim.Status)
	assert.Equal(t, agent.ID, claim.AgentID)

	// A second pending claim by the same agent is refused.
	_, err = SubmitClaim(reservation.ID, agent.ID, "again", "")
	assert.ErrorIs(t, err, ErrClaimNotAllowed)

	// A different agent may still file their own claim.
	rival := createTestUser(t, "agent", 0.04)
	_, err = SubmitClaim(reservation.ID, rival.ID, "my referral actually", "")
	assert.NoError(t, err)
}

func TestSubmitClaimReservationAlreadyHasAgent(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	agent := createTestUser(t, "agent", 0.05)
	reservation := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.June, 1), date(2026, time.June, 3),
		func(r *models.Reservation) { r.AgentID = &agent.ID })

	rival := createTestUser(t, "agent", 0.04)
	_, err := SubmitClaim(reservation.ID, rival.ID, "mine", "")
	assert.ErrorIs(t, err, ErrClaimNotAllowed)
}

func TestSubmitClaimReservationNotFound(t *testing.T) {
	setupTestDB(t)
	agent := createTestUser(t, "agent", 0.05)

	_, err := SubmitClaim(12345, agent.ID, "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveClaim(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	agent := createTestUser(t, "agent", 0.05)
	reservation := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.June, 1), date(2026, time.June, 3),
		func(r *models.Reservation) { r.TotalPrice = 100000 })

	claim, err := SubmitClaim(reservation.ID, agent.ID, "referred", "")
	require.NoError(t, err)

	approved, err := ApproveClaim(claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimApproved, approved.Status)

	var fromDB models.Reservation
	require.NoError(t, storage.DB.First(&fromDB, reservation.ID).Error)
	require.NotNil(t, fromDB.AgentID)
	assert.Equal(t, agent.ID, *fromDB.AgentID)

	var commissions []models.Commission
	require.NoError(t, storage.DB.Find(&commissions).Error)
	require.Len(t, commissions, 1)
	assert.Equal(t, int64(5000), commissions[0].Amount)

	// Re-reviewing a settled claim fails.
	_, err = ApproveClaim(claim.ID)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	_, err = RejectClaim(claim.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestApproveClaimSecondAgentLosesAndNoSecondCommission(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	first := createTestUser(t, "agent", 0.05)
	second := createTestUser(t, "agent", 0.04)
	reservation := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.June, 1), date(2026, time.June, 3), nil)

	firstClaim, err := SubmitClaim(reservation.ID, first.ID, "mine", "")
	require.NoError(t, err)
	secondClaim, err := SubmitClaim(reservation.ID, second.ID, "no, mine", "")
	require.NoError(t, err)

	_, err = ApproveClaim(firstClaim.ID)
	require.NoError(t, err)

	// The reservation already carries an agent now, so the rival claim
	// cannot be approved and no second commission appears.
	_, err = ApproveClaim(secondClaim.ID)
	assert.ErrorIs(t, err, ErrClaimNotAllowed)

	var count int64
	storage.DB.Model(&models.Commission{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var fromDB models.Reservation
	require.NoError(t, storage.DB.First(&fromDB, reservation.ID).Error)
	assert.Equal(t, first.ID, *fromDB.AgentID)
}

func TestApproveClaimAfterAgentConfirmationKeepsSingleCommission(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	agent := createTestUser(t, "agent", 0.05)
	rival := createTestUser(t, "agent", 0.04)

	reservation := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.June, 1), date(2026, time.June, 3), nil)
	claim, err := SubmitClaim(reservation.ID, rival.ID, "mine", "")
	require.NoError(t, err)

	// An admin attaches the real agent and the reservation confirms,
	// creating the commission.
	require.NoError(t, storage.DB.Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).Update("agent_id", agent.ID).Error)
	_, err = ConfirmReservation(reservation.ID, SourceWebhook)
	require.NoError(t, err)

	_, err = ApproveClaim(claim.ID)
	assert.ErrorIs(t, err, ErrClaimNotAllowed)

	var count int64
	storage.DB.Model(&models.Commission{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRejectClaim(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	agent := createTestUser(t, "agent", 0.05)
	reservation := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.June, 1), date(2026, time.June, 3), nil)

	claim, err := SubmitClaim(reservation.ID, agent.ID, "referred", "")
	require.NoError(t, err)

	rejected, err := RejectClaim(claim.ID, "no proof provided")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRejected, rejected.Status)
	assert.Equal(t, "no proof provided", rejected.ReviewNote)

	// The reservation is untouched and claimable again.
	var fromDB models.Reservation
	require.NoError(t, storage.DB.First(&fromDB, reservation.ID).Error)
	assert.Nil(t, fromDB.AgentID)

	_, err = SubmitClaim(reservation.ID, agent.ID, "with proof now", "https://example.com/p.jpg")
	assert.NoError(t, err)
}

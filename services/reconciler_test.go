package services

import (
	"testing"
	"time"

	"transient-booking-server/models"
	"transient-booking-server/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmReservation(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	pending := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3), nil)

	confirmed, err := ConfirmReservation(pending.ID, SourceWebhook)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)
	assert.Equal(t, models.PaymentPartial, confirmed.PaymentStatus)

	// No agent, no commission.
	var count int64
	storage.DB.Model(&models.Commission{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestConfirmReservationIdempotent(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)
	agent := createTestUser(t, "agent", 0.05)
	pending := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3),
		func(r *models.Reservation) {
			r.AgentID = &agent.ID
			r.TotalPrice = 500000
		})

	// Webhook, poll and a duplicate webhook delivery all land.
	for _, source := range []ConfirmationSource{SourceWebhook, SourcePoll, SourceWebhook} {
		confirmed, err := ConfirmReservation(pending.ID, source)
		require.NoError(t, err)
		assert.Equal(t, models.ReservationConfirmed, confirmed.Status)
	}

	var commissions []models.Commission
	require.NoError(t, storage.DB.Find(&commissions).Error)
	require.Len(t, commissions, 1, "commission must be created at most once")
	assert.Equal(t, agent.ID, commissions[0].AgentID)
	assert.Equal(t, pending.ID, commissions[0].ReservationID)
	assert.Equal(t, int64(25000), commissions[0].Amount)
	assert.Equal(t, models.CommissionPending, commissions[0].Status)

	// Duplicate deliveries must also be silent: one confirmation notice for
	// the guest, one commission notice for the agent, no matter how often
	// the reconciler runs.
	var confirmedNotices int64
	storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", guest.ID, "reservation_confirmed").Count(&confirmedNotices)
	assert.Equal(t, int64(1), confirmedNotices)

	var commissionNotices int64
	storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", agent.ID, "commission_created").Count(&commissionNotices)
	assert.Equal(t, int64(1), commissionNotices)
}

func TestConfirmReservationGatewayLoserCancelled(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)

	winner := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3), nil)
	loser := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 2), date(2026, time.May, 4), nil)

	_, err := ConfirmReservation(winner.ID, SourceWebhook)
	require.NoError(t, err)

	got, err := ConfirmReservation(loser.ID, SourcePoll)
	assert.ErrorIs(t, err, ErrAvailabilityConflict)
	require.NotNil(t, got)
	assert.Equal(t, models.ReservationCancelled, got.Status)

	var fromDB models.Reservation
	require.NoError(t, storage.DB.First(&fromDB, loser.ID).Error)
	assert.Equal(t, models.ReservationCancelled, fromDB.Status, "cancellation must be committed, not rolled back")
}

func TestConfirmReservationManualConflictLeavesPending(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)

	winner := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3), nil)
	doomed := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 2), date(2026, time.May, 4), nil)

	_, err := ConfirmReservation(winner.ID, SourceManual)
	require.NoError(t, err)

	_, err = ConfirmReservation(doomed.ID, SourceManual)
	assert.ErrorIs(t, err, ErrAvailabilityConflict)

	var fromDB models.Reservation
	require.NoError(t, storage.DB.First(&fromDB, doomed.ID).Error)
	assert.Equal(t, models.ReservationPending, fromDB.Status, "staff conflict must not cancel the hold")
}

func TestConfirmReservationParkingRace(t *testing.T) {
	setupTestDB(t)
	unitA := createTestUnit(t)
	unitB := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)

	withCar := func(r *models.Reservation) { r.HasCar = true }
	winner := createTestReservation(t, unitA.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3), withCar)
	loser := createTestReservation(t, unitB.ID, guest.ID,
		date(2026, time.May, 2), date(2026, time.May, 4), withCar)

	_, err := ConfirmReservation(winner.ID, SourceWebhook)
	require.NoError(t, err)

	got, err := ConfirmReservation(loser.ID, SourceWebhook)
	assert.ErrorIs(t, err, ErrParkingConflict)
	assert.Equal(t, models.ReservationCancelled, got.Status)
}

func TestConfirmReservationOverlappingNoCarBothUnitsConfirm(t *testing.T) {
	setupTestDB(t)
	unitA := createTestUnit(t)
	unitB := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)

	a := createTestReservation(t, unitA.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3), nil)
	b := createTestReservation(t, unitB.ID, guest.ID,
		date(2026, time.May, 2), date(2026, time.May, 4), nil)

	_, err := ConfirmReservation(a.ID, SourceWebhook)
	require.NoError(t, err)
	confirmed, err := ConfirmReservation(b.ID, SourceWebhook)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)
}

func TestConfirmReservationTerminalStates(t *testing.T) {
	setupTestDB(t)
	unit := createTestUnit(t)
	guest := createTestUser(t, "guest", 0)

	cancelled := createTestReservation(t, unit.ID, guest.ID,
		date(2026, time.May, 1), date(2026, time.May, 3),
		func(r *models.Reservation) { r.Status = models.ReservationCancelled })

	_, err := ConfirmReservation(cancelled.ID, SourceWebhook)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = ConfirmReservation(99999, SourceWebhook)
	assert.ErrorIs(t, err, ErrNotFound)
}

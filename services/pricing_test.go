package services

import (
	"testing"
	"time"

	"transient-booking-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositTiers(t *testing.T) {
	cases := []struct {
		total   int64
		deposit int64
	}{
		{499, 500},
		{4999, 500},
		{5000, 1000},
		{9999, 1000},
		{10000, 1500},
		{250000, 1500},
	}
	for _, c := range cases {
		assert.Equal(t, c.deposit, DepositFor(c.total), "total %d", c.total)
	}
}

func TestCalculatePriceExtraGuests(t *testing.T) {
	unit := &models.Unit{
		BaseRate:       1500,
		BaseOccupancy:  3,
		ExtraGuestRate: 500,
		MaxOccupancy:   8,
	}
	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)

	quote, err := CalculatePrice(unit, checkIn, checkOut, 5, false)
	require.NoError(t, err)
	assert.Equal(t, 2, quote.Nights)
	assert.Equal(t, int64(2500), quote.NightlyRate)
	assert.Equal(t, int64(5000), quote.TotalPrice)
	assert.Equal(t, int64(1000), quote.RequiredDeposit)
	assert.Equal(t, int64(4000), quote.Balance)
}

func TestCalculatePriceBaseOccupancyNoSurcharge(t *testing.T) {
	unit := &models.Unit{BaseRate: 1500, BaseOccupancy: 3, ExtraGuestRate: 500, MaxOccupancy: 8}
	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	for _, occupancy := range []int{1, 2, 3} {
		quote, err := CalculatePrice(unit, checkIn, checkIn.AddDate(0, 0, 1), occupancy, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), quote.NightlyRate, "occupancy %d", occupancy)
	}
}

func TestCalculatePriceAccessibilityDiscount(t *testing.T) {
	unit := &models.Unit{BaseRate: 5000, BaseOccupancy: 2, ExtraGuestRate: 0, MaxOccupancy: 4}
	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	quote, err := CalculatePrice(unit, checkIn, checkIn.AddDate(0, 0, 1), 2, true)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), quote.TotalPrice)
	assert.Equal(t, int64(500), quote.RequiredDeposit)
	assert.Equal(t, int64(3500), quote.Balance)
}

func TestCalculatePriceAccessibilityRoundsHalfUp(t *testing.T) {
	// 1111 * 0.80 = 888.8, rounds to 889 centavos.
	unit := &models.Unit{BaseRate: 1111, BaseOccupancy: 2, ExtraGuestRate: 0, MaxOccupancy: 4}
	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	quote, err := CalculatePrice(unit, checkIn, checkIn.AddDate(0, 0, 1), 2, true)
	require.NoError(t, err)
	assert.Equal(t, int64(889), quote.TotalPrice)
}

func TestCalculatePriceDepositNeverExceedsTotal(t *testing.T) {
	unit := &models.Unit{BaseRate: 400, BaseOccupancy: 2, ExtraGuestRate: 0, MaxOccupancy: 4}
	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	quote, err := CalculatePrice(unit, checkIn, checkIn.AddDate(0, 0, 1), 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(400), quote.TotalPrice)
	assert.Equal(t, int64(400), quote.RequiredDeposit)
	assert.Equal(t, int64(0), quote.Balance)
}

func TestCalculatePriceInvalidRange(t *testing.T) {
	unit := &models.Unit{BaseRate: 1500, BaseOccupancy: 3, ExtraGuestRate: 500, MaxOccupancy: 8}
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	_, err := CalculatePrice(unit, day, day, 2, false)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = CalculatePrice(unit, day, day.AddDate(0, 0, -1), 2, false)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCalculatePriceInvalidOccupancy(t *testing.T) {
	unit := &models.Unit{BaseRate: 1500, BaseOccupancy: 3, ExtraGuestRate: 500, MaxOccupancy: 8}
	checkIn := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)

	_, err := CalculatePrice(unit, checkIn, checkOut, 0, false)
	assert.ErrorIs(t, err, ErrInvalidOccupancy)

	_, err = CalculatePrice(unit, checkIn, checkOut, 9, false)
	assert.ErrorIs(t, err, ErrInvalidOccupancy)
}

func TestNightsBetweenIgnoresTimeOfDay(t *testing.T) {
	in := time.Date(2026, time.March, 10, 23, 50, 0, 0, time.UTC)
	out := time.Date(2026, time.March, 12, 1, 5, 0, 0, time.UTC)
	assert.Equal(t, 2, NightsBetween(in, out))
}

package services

import (
	"time"

	"transient-booking-server/models"
)

// Deposit tiers, in centavos, selected by total price. The deposit is a fixed
// amount, not a percentage of the total.
const (
	depositTierLow  = 500
	depositTierMid  = 1000
	depositTierHigh = 1500

	depositMidThreshold  = 5000
	depositHighThreshold = 10000
)

// accessibility discount keeps 80% of the total, rounded to the nearest centavo.
const accessibilityKeepPercent = 80

// Quote is the authoritative price breakdown for a stay. It is always computed
// server-side from the unit's rate table; a client-submitted price is never
// trusted.
type Quote struct {
	Nights          int   `json:"nights"`
	NightlyRate     int64 `json:"nightlyRate"`
	TotalPrice      int64 `json:"totalPrice"`
	RequiredDeposit int64 `json:"requiredDeposit"`
	Balance         int64 `json:"balance"`
}

// CalculatePrice prices a stay at unit for [checkIn, checkOut) with the given
// headcount. Pure function: no state, no I/O.
func CalculatePrice(unit *models.Unit, checkIn, checkOut time.Time, occupancy int, accessibilityDiscount bool) (*Quote, error) {
	nights := NightsBetween(checkIn, checkOut)
	if nights < 1 {
		return nil, ErrInvalidRange
	}
	if occupancy < 1 || (unit.MaxOccupancy > 0 && occupancy > unit.MaxOccupancy) {
		return nil, ErrInvalidOccupancy
	}

	extraGuests := occupancy - unit.BaseOccupancy
	if extraGuests < 0 {
		extraGuests = 0
	}

	nightlyRate := unit.BaseRate + int64(extraGuests)*unit.ExtraGuestRate
	total := nightlyRate * int64(nights)
	if accessibilityDiscount {
		// round-half-up to the nearest centavo
		total = (total*accessibilityKeepPercent + 50) / 100
	}

	deposit := DepositFor(total)
	if deposit > total {
		deposit = total
	}

	return &Quote{
		Nights:          nights,
		NightlyRate:     nightlyRate,
		TotalPrice:      total,
		RequiredDeposit: deposit,
		Balance:         total - deposit,
	}, nil
}

// DepositFor returns the tiered downpayment for a total price.
func DepositFor(total int64) int64 {
	switch {
	case total >= depositHighThreshold:
		return depositTierHigh
	case total >= depositMidThreshold:
		return depositTierMid
	default:
		return depositTierLow
	}
}

// NightsBetween counts calendar nights between two dates, ignoring the
// time-of-day component.
func NightsBetween(checkIn, checkOut time.Time) int {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	return int(out.Sub(in).Hours() / 24)
}

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

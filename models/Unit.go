package models

import (
	"gorm.io/gorm"
)

// Unit is a bookable lodging unit. Rates are stored in centavos; the price of a
// reservation is computed and frozen at booking-creation time, so editing a unit
// never reprices existing reservations.
type Unit struct {
	gorm.Model
	Name           string `json:"name"`
	Description    string `json:"description"`
	BaseRate       int64  `json:"baseRate"`       // nightly rate for BaseOccupancy guests
	BaseOccupancy  int    `json:"baseOccupancy"`  // guests included in BaseRate
	ExtraGuestRate int64  `json:"extraGuestRate"` // nightly add-on per guest above BaseOccupancy
	MaxOccupancy   int    `json:"maxOccupancy"`
	IsActive       *bool  `json:"isActive"`

	Reservations []Reservation `json:"reservations,omitempty" gorm:"foreignKey:UnitID"`
}

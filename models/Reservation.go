package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation statuses. A reservation is created pending and is flipped to
// confirmed exactly once by the confirmation reconciler. Completed is a
// downstream transition handled outside this server.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Payment statuses.
const (
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentFull    = "full"
)

// Reservation models a stay at a unit over [checkIn, checkOut). All amounts are
// in centavos and are computed server-side at creation time.
type Reservation struct {
	gorm.Model
	UnitID   uint      `json:"unitID" gorm:"index"`
	GuestID  uint      `json:"guestID" gorm:"index"`
	CheckIn  time.Time `json:"checkIn" gorm:"index"`
	CheckOut time.Time `json:"checkOut" gorm:"index"`
	Adults   int       `json:"adults"`
	Children int       `json:"children"`

	HasCar                   bool `json:"hasCar"` // parking is a single shared slot across all units
	HasPet                   bool `json:"hasPet"`
	HasAccessibilityDiscount bool `json:"hasAccessibilityDiscount"`

	TotalPrice      int64 `json:"totalPrice"`
	RequiredDeposit int64 `json:"requiredDeposit"`
	Balance         int64 `json:"balance"` // TotalPrice - RequiredDeposit, never negative

	Status        string `json:"status" gorm:"type:varchar(20);default:pending;index"`
	PaymentStatus string `json:"paymentStatus" gorm:"type:varchar(20);default:unpaid"`

	// AgentID is set when an agent placed the booking or when a claim is
	// approved. Once non-null it is never reassigned.
	AgentID          *uint  `json:"agentID" gorm:"index"`
	GatewaySessionID string `json:"gatewaySessionID" gorm:"index"`
	Note             string `json:"note"`

	Unit  *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Guest *User `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
	Agent *User `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}

// Occupancy is the headcount used for pricing.
func (r *Reservation) Occupancy() int {
	return r.Adults + r.Children
}

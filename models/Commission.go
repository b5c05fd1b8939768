package models

import (
	"gorm.io/gorm"
)

// Commission statuses.
const (
	CommissionPending  = "pending"
	CommissionPaidOut  = "paid_out"
	CommissionRejected = "rejected"
)

// Commission is an agent's cut of a confirmed reservation. At most one exists
// per reservation; the unique index backs the in-transaction existence check.
type Commission struct {
	gorm.Model
	ReservationID uint   `json:"reservationID" gorm:"uniqueIndex"`
	AgentID       uint   `json:"agentID" gorm:"index"`
	Amount        int64  `json:"amount"` // floor(reservation.TotalPrice * agent.CommissionRate), centavos
	Status        string `json:"status" gorm:"type:varchar(20);default:pending;index"`

	Reservation *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
	Agent       *User        `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}

package models

import (
	"gorm.io/gorm"
)

// Claim statuses.
const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
)

// ClaimRequest is an agent's retroactive request to be credited for a
// reservation that was placed without an agent. Only one claim per reservation
// can ever be approved; the reservation's null agent check enforces that.
type ClaimRequest struct {
	gorm.Model
	ReservationID uint   `json:"reservationID" gorm:"index"`
	AgentID       uint   `json:"agentID" gorm:"index"`
	Justification string `json:"justification" gorm:"type:text"`
	ProofURL      string `json:"proofURL"`
	Status        string `json:"status" gorm:"type:varchar(20);default:pending;index"`
	ReviewNote    string `json:"reviewNote"`

	Reservation *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
	Agent       *User        `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}

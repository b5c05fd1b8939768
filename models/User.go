package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Roles.
const (
	RoleGuest = "guest"
	RoleAgent = "agent"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" gorm:"index"`
	PhoneNumber string `json:"phoneNumber" gorm:"uniqueIndex"`
	Password    string `json:"-"`
	Role        string `json:"role" gorm:"type:varchar(20);default:guest;index"` // guest, agent, staff, admin

	// CommissionRate applies to agents only, e.g. 0.05 for 5%.
	CommissionRate float64 `json:"commissionRate"`

	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`

	Reservations []Reservation `json:"reservations,omitempty" gorm:"foreignKey:GuestID"`
}

// MarshalJSON renders PushTokens as a plain string slice instead of raw JSON bytes.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}

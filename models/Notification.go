package models

import (
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userID" gorm:"index"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type" gorm:"size:64;index"`
	RefID   uint   `json:"refID"`
	RefType string `json:"refType" gorm:"size:64"`
	Link    string `json:"link"`
	IsRead  bool   `json:"isRead" gorm:"default:false;index"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID    string `gorm:"not null;index"`
	Type      string `gorm:"not null"` // "order_placed", "new_message", "account_banned"
	Title     string `gorm:"not null"`
	Message   string
	Data      datatypes.JSON `gorm:"type:jsonb"` // {"order_id": "...", "shop_id": "..."}
	ActionURL string
	IsRead    bool `gorm:"default:false"`
	ReadAt    *time.Time
}

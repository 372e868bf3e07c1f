package models

import "time"

// Dialog - диалог покупателя с магазином. Уникален по паре (buyer, shop).
type Dialog struct {
	BaseModel
	BuyerID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_dialog_pair"`
	ShopID  string `gorm:"type:uuid;not null;index;uniqueIndex:idx_dialog_pair"`

	LastMessageAt *time.Time

	// Relations
	Messages []Message `gorm:"foreignKey:DialogID"`
}

type Message struct {
	BaseModel
	DialogID string `gorm:"type:uuid;not null;index"`
	SenderID string `gorm:"type:uuid;not null"`
	Body     string `gorm:"not null"`
	IsRead   bool   `gorm:"default:false"`
	ReadAt   *time.Time
}

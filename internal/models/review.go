package models

// Review - отзыв покупателя на товар. Один отзыв на пару (заказ, товар).
type Review struct {
	BaseModel
	UserID    string `gorm:"type:uuid;not null;index;uniqueIndex:idx_review_once"`
	ProductID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_review_once"`
	OrderID   string `gorm:"type:uuid;not null;uniqueIndex:idx_review_once"`
	Rating    int    `gorm:"not null"` // 1..5
	Comment   string
}

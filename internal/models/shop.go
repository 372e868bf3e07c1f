package models

type Shop struct {
	BaseModel
	OwnerID     string     `gorm:"type:uuid;not null;uniqueIndex"` // у продавца не больше одного магазина
	Name        string     `gorm:"not null"`
	Description string
	LogoURL     string
	Status      ShopStatus `gorm:"type:varchar(20);default:'pending'"`
	Rating      float64    `gorm:"default:0"`
	RatingCount int64      `gorm:"default:0"`

	// Relations
	Products []Product `gorm:"foreignKey:ShopID"`
	Vouchers []Voucher `gorm:"foreignKey:ShopID"`
}

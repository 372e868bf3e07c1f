package models

import "time"

type User struct {
	BaseModel
	Name         string     `gorm:"not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Role         UserRole   `gorm:"type:varchar(20);not null"`
	Status       UserStatus `gorm:"type:varchar(20);default:'pending'"`
	Phone        string
	AvatarURL    string

	// Relations
	Shop          *Shop          `gorm:"foreignKey:OwnerID"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID"`
}

// RefreshToken - персистентная запись выданного refresh-токена.
// Хранится именно для возможности отзыва до естественного истечения:
// подписанный токен сам по себе отозвать нельзя.
//
// Инварианты:
//   - поиск по TokenHash за O(1) (уникальный индекс);
//   - ReplacedBy != nil тогда и только тогда, когда токен был ротирован
//     (прямой отзыв через logout/бан оставляет ReplacedBy пустым).
type RefreshToken struct {
	BaseModel
	UserID     string `gorm:"not null;index"`
	Token      string `gorm:"not null"`
	TokenHash  string `gorm:"not null;uniqueIndex"` // sha256(Token) в hex
	DeviceID   string
	DeviceName string
	IP         string
	UserAgent  string
	ExpiresAt  time.Time `gorm:"not null"`
	LastUsedAt *time.Time
	IsRevoked  bool    `gorm:"not null;default:false;index"`
	ReplacedBy *string `gorm:"type:uuid"` // id токена, который пришел на смену
}

package auth

import (
	"errors"

	"bazaar_backend/internal/models"
)

// Таблица прав (роль -> ресурс -> действия).
// Единая точка авторизационных решений вместо разрозненных
// проверок роли в каждом хендлере.
var permissions = map[models.UserRole]map[string][]string{
	models.UserRoleAdmin: {
		"users":      {"read", "write", "ban"},
		"shops":      {"read", "approve", "suspend"},
		"categories": {"read", "write", "delete"},
		"vouchers":   {"read", "write", "delete"},
		"products":   {"read"},
	},
	models.UserRoleSeller: {
		"shop":     {"read:self", "write:self"},
		"products": {"read", "write:self", "delete:self"},
		"vouchers": {"read", "write:self", "delete:self"},
		"chat":     {"read:self", "write:self"},
	},
	models.UserRoleBuyer: {
		"products": {"read"},
		"cart":     {"read:self", "write:self"},
		"checkout": {"write:self"},
		"reviews":  {"read", "write:self"},
		"chat":     {"read:self", "write:self"},
	},
}

// Can проверяет, разрешено ли роли действие над ресурсом
func Can(role models.UserRole, resource, action string) bool {
	actions, ok := permissions[role][resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// IsAdmin проверяет является ли пользователь администратором
func IsAdmin(role models.UserRole) bool {
	return role == models.UserRoleAdmin
}

// ValidateRole проверяет валидность роли
func ValidateRole(role models.UserRole) error {
	switch role {
	case models.UserRoleAdmin, models.UserRoleSeller, models.UserRoleBuyer:
		return nil
	default:
		return errors.New("invalid role")
	}
}

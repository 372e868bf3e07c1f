package contextkeys

type contextKey string

const (
	// DBContextKey - ключ, под которым middleware кладет *gorm.DB (пул или транзакцию)
	DBContextKey contextKey = "db"

	// UserIDContextKey - ключ для ID аутентифицированного пользователя
	UserIDContextKey contextKey = "userID"

	// RoleContextKey - ключ для роли аутентифицированного пользователя
	RoleContextKey contextKey = "role"
)

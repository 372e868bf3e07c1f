package middleware

import (
	"net/http"
	"strings"

	"bazaar_backend/internal/auth"
	"bazaar_backend/internal/logger"
	"bazaar_backend/internal/models"
	"bazaar_backend/pkg/apperrors"
	"bazaar_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет access-токен: подпись, тип, денайлист.
// Claims кладутся в gin-контекст и в request context (для логов).
func AuthMiddleware(codec *auth.TokenCodec, denylist *auth.Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := codec.Verify(tokenStr)
		if err != nil {
			if err == auth.ErrTokenExpired {
				apperrors.HandleError(c, apperrors.ErrTokenExpired)
			} else {
				apperrors.HandleError(c, apperrors.ErrTokenInvalid)
			}
			c.Abort()
			return
		}

		if claims.Type != auth.TokenTypeAccess {
			apperrors.HandleError(c, apperrors.ErrWrongTokenType)
			c.Abort()
			return
		}

		revoked, err := denylist.IsRevoked(c.Request.Context(), tokenStr)
		if err != nil {
			// Redis недоступен: токен пропускаем, полагаясь на короткий TTL
			logger.CtxWithError(c.Request.Context(), "denylist check failed", err)
		} else if revoked {
			apperrors.HandleError(c, apperrors.ErrTokenRevoked)
			c.Abort()
			return
		}

		c.Set(string(contextkeys.UserIDContextKey), claims.UserID)
		c.Set(string(contextkeys.RoleContextKey), models.UserRole(claims.Role))
		c.Set("accessToken", tokenStr)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequirePermission сверяется с таблицей прав (роль, ресурс, действие).
// Решение принимается один раз на запрос, без разбросанных if-ов по хендлерам.
func RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: no role"})
			return
		}

		if !auth.Can(role, resource, action) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRoles пускает только перечисленные роли
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok || !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID извлекает ID пользователя из gin-контекста
func CurrentUserID(c *gin.Context) string {
	val, exists := c.Get(string(contextkeys.UserIDContextKey))
	if !exists {
		return ""
	}
	id, ok := val.(string)
	if !ok {
		return ""
	}
	return id
}

// CurrentRole извлекает роль из gin-контекста
func CurrentRole(c *gin.Context) (models.UserRole, bool) {
	val, exists := c.Get(string(contextkeys.RoleContextKey))
	if !exists {
		return "", false
	}
	role, ok := val.(models.UserRole)
	if !ok {
		roleStr, isString := val.(string)
		if !isString {
			return "", false
		}
		role = models.UserRole(roleStr)
	}
	return role, true
}

// AccessToken возвращает сырой access-токен текущего запроса
func AccessToken(c *gin.Context) string {
	val, exists := c.Get("accessToken")
	if !exists {
		return ""
	}
	token, _ := val.(string)
	return token
}

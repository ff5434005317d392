package middleware

import (
	"strings"

	"placement_backend/internal/auth"
	"placement_backend/internal/logger"
	"placement_backend/internal/models"
	"placement_backend/pkg/apperrors"
	"placement_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware отсекает запросы без валидного токена на раннем этапе.
// Сервисы все равно проверяют токен сами: он передается им явно.
func AuthMiddleware(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))

		principal, err := guard.Authenticate(token)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}

		c.Set(string(contextkeys.TokenContextKey), token)
		c.Set(string(contextkeys.PrincipalContextKey), principal)

		ctx := logger.WithUserID(c.Request.Context(), principal.AccountID, string(principal.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRoles - ранний отказ по роли для целых групп маршрутов
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			apperrors.HandleError(c, apperrors.NewUnauthenticatedError("authentication required"))
			return
		}
		if !principal.HasRole(roles...) {
			apperrors.HandleError(c, apperrors.NewForbiddenError("role is not allowed to access this resource"))
			return
		}
		c.Next()
	}
}

// RequireOwner проверяет политику с владельцем из параметра пути до разбора тела:
// отказ в доступе всегда приходит раньше ошибок валидации
func RequireOwner(param string, policy auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			apperrors.HandleError(c, apperrors.NewUnauthenticatedError("authentication required"))
			return
		}
		if err := principal.Check(policy.OwnedBy(c.Param(param))); err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.Next()
	}
}

// BearerToken возвращает токен запроса. Для публичных маршрутов
// читает заголовок напрямую, может вернуть пустую строку.
func BearerToken(c *gin.Context) string {
	if v, ok := c.Get(string(contextkeys.TokenContextKey)); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return extractBearer(c.GetHeader("Authorization"))
}

// GetPrincipal возвращает проверенного пользователя или nil
func GetPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(string(contextkeys.PrincipalContextKey))
	if !ok {
		return nil
	}
	principal, _ := v.(*auth.Principal)
	return principal
}

// GetUserID извлекает ID аккаунта из контекста
func GetUserID(c *gin.Context) string {
	if p := GetPrincipal(c); p != nil {
		return p.AccountID
	}
	return ""
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/pkg/auth"
	"github.com/yourusername/quiz-engine/pkg/logger"
)

// Ключи контекста gin, которые выставляет RequireAuth
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// TokenParser проверяет bearer-токен
type TokenParser interface {
	ParseToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	tokens TokenParser
	log    *zap.Logger
}

// NewAuthMiddleware создает middleware поверх сервиса проверки токенов
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		log:    logger.Component("AuthMiddleware"),
	}
}

// RequireAuth проверяет заголовок Authorization: Bearer {token}
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errorType = "token_expired"
			}
			m.log.Debug("token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// InstructorOnly пропускает только instructor и admin. Применяется ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) InstructorOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		role := c.GetString(ContextRole)
		if role != auth.RoleInstructor && role != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Instructor rights required"})
			return
		}

		c.Next()
	}
}

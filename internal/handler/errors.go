package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/middleware"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
	"github.com/yourusername/quiz-engine/pkg/auth"
)

// handleError переводит ошибку сервиса в HTTP-ответ
func handleError(c *gin.Context, log *zap.Logger, err error) {
	var limitErr *apperrors.AttemptLimitExceededError
	var stateErr *apperrors.InvalidStateError

	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "attempt_limit_exceeded", "limit": limitErr.Limit})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "invalid_state", "status": stateErr.Status})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
	default:
		log.Error("internal server error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindError отвечает 400 на некорректное тело запроса
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
}

// currentUser читает пользователя, выставленного AuthMiddleware
func currentUser(c *gin.Context) (userID uint, role string) {
	return c.GetUint(middleware.ContextUserID), c.GetString(middleware.ContextRole)
}

// isAuthor сообщает, может ли текущий пользователь редактировать банки
func isAuthor(c *gin.Context) bool {
	_, role := currentUser(c)
	return role == auth.RoleInstructor || role == auth.RoleAdmin
}

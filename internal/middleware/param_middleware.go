package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam кладет положительный числовой параметр пути в контекст под contextKey.
// Ноль, отрицательные и нечисловые значения отклоняются с 400.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":      "path parameter " + paramName + " must be a positive integer",
				"error_type": "invalid_param",
				"value":      raw,
			})
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"solvit/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthProviderMiddleware validates the provider's bearer token. The token
// subject must be the provider named by the :id path parameter, so providers
// can only edit their own schedule.
func JWTAuthProviderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		providerID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || providerID == "" {
			logger.Info("Rejected provider token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if target := c.Param("id"); target != "" && target != providerID {
			logger.Warn("Provider attempted to edit another provider's schedule",
				zap.String("providerID", providerID), zap.String("target", target))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not allowed to modify this provider"})
			return
		}

		c.Set("providerID", providerID)
		c.Next()
	}
}

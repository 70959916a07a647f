package middleware

import (
	"errors"
	"net/http"

	"sakudo-app/sakudo/services"
	"sakudo-app/sakudo/utils/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware guards the REST API. Only the Authorization header is
// honoured here; query tokens end up in access logs.
func AuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.BearerToken(c.GetHeader("Authorization"))
		if errors.Is(err, token.ErrAuthHeaderMissing) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		authenticate(c, authService, tokenString)
	}
}

// authenticate resolves tokenString to an account and hands the request on.
// Handlers read the caller with c.GetUint("userID").
func authenticate(c *gin.Context, authService services.AuthServiceInterface, tokenString string) {
	claims, err := authService.ValidateToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.Set("userID", claims.UserID)
	c.Set("username", claims.Username)
	c.Next()
}

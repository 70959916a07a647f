package middleware

import (
	"net/http"

	"sakudo-app/sakudo/services"
	"sakudo-app/sakudo/utils/token"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware also takes the token from the "token" query
// parameter, since upgrade requests from browsers carry no custom headers.
func WebSocketAuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		authenticate(c, authService, tokenString)
	}
}

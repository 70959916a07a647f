package routes

import (
	"errors"
	"log"
	"net/http"

	"sakudo-app/sakudo/services"

	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(group *gin.RouterGroup, userService services.UserServiceInterface) {
	group.GET("/users/me", func(c *gin.Context) { GetCurrentUser(c, userService) })
}

func GetCurrentUser(c *gin.Context, userService services.UserServiceInterface) {
	userID := c.GetUint("userID")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := userService.GetUserById(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Failed to load user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

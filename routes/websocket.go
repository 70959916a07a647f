package routes

import (
	"sakudo-app/sakudo/middleware"
	"sakudo-app/sakudo/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes sets up the change feed endpoint with authentication
func RegisterWebSocketRoutes(router *gin.Engine, authService services.AuthServiceInterface, wsService services.WebSocketServiceInterface) {
	router.GET("/ws", middleware.WebSocketAuthMiddleware(authService), wsService.HandleConnection)
}

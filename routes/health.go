package routes

import (
	"net/http"
	"time"

	"sakudo-app/sakudo/database"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes exposes a liveness probe that also checks the
// storage engine.
func RegisterHealthRoutes(router *gin.Engine, db *database.Database) {
	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"time":   time.Now().UTC(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})
}

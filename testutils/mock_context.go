package testutils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTestGinContext returns a gin context for req, optionally carrying an
// authenticated user id the way the auth middleware sets it.
func GetTestGinContext(w http.ResponseWriter, req *http.Request, userID uint) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set("userID", userID)
	}
	return c
}

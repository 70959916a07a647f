package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"sakudo-app/sakudo/services"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
}

func RegisterAuthRoutes(router *gin.Engine, authService services.AuthServiceInterface) {
	group := router.Group("/api/v1/auth")
	{
		group.POST("/signup", func(c *gin.Context) { Signup(c, authService) })
		group.POST("/login", func(c *gin.Context) { Login(c, authService) })
	}
}

// Signup creates an account and logs it in straight away.
func Signup(c *gin.Context, authService services.AuthServiceInterface) {
	var request signupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.ValidateSignup(request.Username, request.Password, request.Confirm); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := strings.TrimSpace(request.Username)
	password := strings.TrimSpace(request.Password)

	if err := authService.CreateAccount(c.Request.Context(), username, password); err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to create account: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	token, userID, err := authService.Login(c.Request.Context(), username, password)
	if err != nil {
		log.Printf("Failed to log in new account %q: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account created but login failed"})
		return
	}

	c.JSON(http.StatusCreated, loginResponse{Token: token, UserID: userID})
}

func Login(c *gin.Context, authService services.AuthServiceInterface) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.ValidateLogin(request.Username, request.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, userID, err := authService.Login(c.Request.Context(), strings.TrimSpace(request.Username), strings.TrimSpace(request.Password))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		log.Printf("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, UserID: userID})
}

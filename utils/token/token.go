package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAuthHeaderMissing = errors.New("Authentication required")
	ErrInvalidAuthFormat = errors.New("Authorization header format must be Bearer {token}")
	ErrInvalidToken      = errors.New("Invalid or expired token")
)

// JWTClaims names the account a session token was issued to. Subject
// carries the same id as UserID in decimal.
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ValidateToken accepts only HMAC-signed tokens that carry a user id.
func ValidateToken(tokenString string, secret []byte) (*JWTClaims, error) {
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateToken signs an HS256 session token for userID that expires after
// expiration.
func GenerateToken(userID uint, username string, secret []byte, expiration time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := JWTClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// BearerToken returns the credential of an "Authorization: Bearer" header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrAuthHeaderMissing
	}
	credential, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || credential == "" || strings.Contains(credential, " ") {
		return "", ErrInvalidAuthFormat
	}
	return credential, nil
}

// ExtractToken prefers the token query parameter over the Authorization
// header. Browsers cannot set headers on websocket upgrades.
func ExtractToken(c *gin.Context) (string, error) {
	if t := c.Query("token"); t != "" {
		return t, nil
	}
	return BearerToken(c.GetHeader("Authorization"))
}

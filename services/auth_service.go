package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"sakudo-app/sakudo/broker"
	"sakudo-app/sakudo/database"
	"sakudo-app/sakudo/models"
	"sakudo-app/sakudo/utils/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Use the JWTClaims from token package
type JWTClaims = token.JWTClaims

type AuthServiceInterface interface {
	CreateAccount(ctx context.Context, username, password string) error
	VerifyLogin(ctx context.Context, username, password string) (uint, error)
	Login(ctx context.Context, username, password string) (string, uint, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	HashPassword(password string) (string, error)
	ComparePasswords(hashedPassword, password string) error
}

// AuthService is the credential store: it owns the users table and the
// password hashes in it.
type AuthService struct {
	db            *database.Database
	publisher     broker.Publisher
	jwtSecret     []byte
	jwtExpiration time.Duration
	bcryptCost    int

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(db *database.Database, publisher broker.Publisher, jwtSecret string, jwtExpirationHours, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:            db,
		publisher:     publisher,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: time.Duration(jwtExpirationHours) * time.Hour,
		bcryptCost:    bcryptCost,
	}
}

// CreateAccount stores a new user with a freshly salted hash of password.
// It returns ErrUsernameTaken when the username is already registered.
func (s *AuthService) CreateAccount(ctx context.Context, username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: %v", ErrValidation, models.ErrEmptyUsername)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: hash}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.db.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	log.Printf("Account created: user_id=%d", user.ID)
	publishEvent(s.publisher, broker.UserCreated, "user", "create", user.ID, map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

// VerifyLogin returns the id of the user matching username and password.
// An unknown username and a wrong password both yield ErrInvalidCredentials
// and take the same time.
func (s *AuthService) VerifyLogin(ctx context.Context, username, password string) (uint, error) {
	var user models.User
	err := s.db.DB.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.ComparePasswords(s.placeholderHash(), password)
			return 0, ErrInvalidCredentials
		}
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Printf("Stored hash for user_id=%d is unusable: %v", user.ID, err)
		}
		return 0, ErrInvalidCredentials
	}

	return user.ID, nil
}

// Login verifies the credentials and issues a signed token for the session.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, uint, error) {
	userID, err := s.VerifyLogin(ctx, username, password)
	if err != nil {
		return "", 0, err
	}

	tokenString, err := token.GenerateToken(userID, username, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return "", 0, err
	}

	return tokenString, userID, nil
}

// ValidateToken uses the token utility to validate tokens
// ValidateToken rejects expired, malformed or foreign tokens with
// ErrInvalidToken.
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims, err := token.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// placeholderHash is compared against when the username does not exist so
// that lookups of unknown users cost as much as real ones.
func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.HashPassword("sakudo-placeholder-password")
		if err != nil {
			log.Printf("Failed to build placeholder hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

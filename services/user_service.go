package services

import (
	"context"
	"errors"

	"sakudo-app/sakudo/database"
	"sakudo-app/sakudo/models"

	"gorm.io/gorm"
)

type UserServiceInterface interface {
	GetUserById(ctx context.Context, id uint) (models.User, error)
}

// UserService reads accounts. Accounts are created only through
// AuthService.CreateAccount and are never updated or deleted.
type UserService struct {
	db *database.Database
}

func NewUserService(db *database.Database) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserById(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.DB.WithContext(ctx).First(&user, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

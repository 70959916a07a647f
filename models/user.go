package models

import "errors"

var (
	ErrEmptyUsername     = errors.New("username must not be empty")
	ErrEmptyPasswordHash = errors.New("password hash must not be empty")
)

// User is an account row. PasswordHash holds a bcrypt digest with the salt
// encoded inside it; the plaintext password is never stored.
type User struct {
	ID           uint   `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Username     string `gorm:"size:255;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.PasswordHash == "" {
		return ErrEmptyPasswordHash
	}
	return nil
}

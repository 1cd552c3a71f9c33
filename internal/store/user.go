package store

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex"` // Add an index for fast lookups
	PasswordHash string
	LastLoginAt  *time.Time
	LoginCount   int
}

func (s *Store) CreateUser(username, password string) error {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return err
	}

	user := User{
		Username:     username,
		PasswordHash: string(bytes),
	}

	result := s.DB.Create(&user)
	return result.Error
}

func (s *Store) FindUserByUsername(username string) (*User, error) {
	var user User
	result := s.DB.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *Store) RenameUser(oldName, newName string) error {
	return s.DB.Model(&User{}).
		Where("username = ?", oldName).
		Update("username", newName).Error
}

func (s *Store) RemoveUser(username string) error {
	return s.DB.Unscoped().
		Where("username = ?", username).
		Delete(&User{}).Error
}

func (s *Store) UpdatePassword(username, newPassword string) error {
	bytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), 10)
	if err != nil {
		return err
	}

	return s.DB.Model(&User{}).
		Where("username = ?", username).
		Update("password_hash", string(bytes)).Error
}

func (s *Store) Authenticate(username, password string) (*User, error) {
	user, err := s.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidPassword
	}

	now := time.Now()
	s.DB.Model(user).Updates(map[string]interface{}{
		"last_login_at": &now,
		"login_count":   gorm.Expr("login_count + 1"),
	})

	return user, nil
}

func (s *Store) ListUsers() ([]User, error) {
	var users []User
	err := s.DB.Order("username ASC").Find(&users).Error
	return users, err
}

// RecentLogins returns up to limit users ordered by most recent login.
func (s *Store) RecentLogins(limit int) ([]User, error) {
	var users []User
	err := s.DB.Where("last_login_at IS NOT NULL").
		Order("last_login_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *Store) CountUsers() (int64, error) {
	var count int64
	err := s.DB.Model(&User{}).Count(&count).Error
	return count, err
}

package repo

import (
	"errors"

	"docvault-backend/internal/entity"
)

type User interface {
	// AddUser добавляет нового пользователя
	AddUser(user *entity.User) (int, error)
	// GetUser возвращает пользователя по его ID
	GetUser(userID int) (*entity.User, error)
	// GetUserByEmail возвращает пользователя по его email
	GetUserByEmail(email string) (*entity.User, error)
	// GetUserByOauthID возвращает пользователя по идентификатору OAuth-провайдера
	GetUserByOauthID(oauthID string) (*entity.User, error)
	// SetOauthID привязывает аккаунт OAuth-провайдера к существующему пользователю
	SetOauthID(userID int, oauthID string) error
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidPassword = errors.New("invalid password")
)

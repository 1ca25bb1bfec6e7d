package service

import (
	"errors"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"
	"docvault-backend/internal/usecase"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	userRepo repo.User
}

func NewUser(userRepo repo.User) usecase.User {
	return &User{userRepo: userRepo}
}

func (u *User) Register(req *entity.RegisterRequest) (int, error) {
	// Хешируем пароль пользователя
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	user := &entity.User{
		Nickname:     req.Nickname,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	return u.userRepo.AddUser(user)
}

func (u *User) Login(email, password string) (int, error) {
	user, err := u.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return 0, repo.ErrInvalidPassword
		}
		return 0, err
	}

	// Если пароль не установлен (вход только через OAuth), вход по паролю закрыт
	if user.PasswordHash == "" {
		return 0, repo.ErrInvalidPassword
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return 0, repo.ErrInvalidPassword
	}

	return user.ID, nil
}

func (u *User) GetUser(userID int) (*entity.UserProfile, error) {
	user, err := u.userRepo.GetUser(userID)
	if err != nil {
		return nil, err
	}

	return &entity.UserProfile{
		ID:       user.ID,
		Nickname: user.Nickname,
		Email:    user.Email,
	}, nil
}

func (u *User) LoginWithOauth(oauthID, nickname, email string) (int, error) {
	user, err := u.userRepo.GetUserByOauthID(oauthID)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, repo.ErrUserNotFound) {
		return 0, err
	}

	// Привязываем к существующему аккаунту с тем же email
	if email != "" {
		user, err = u.userRepo.GetUserByEmail(email)
		if err == nil {
			if err := u.userRepo.SetOauthID(user.ID, oauthID); err != nil {
				return 0, err
			}
			return user.ID, nil
		}
		if !errors.Is(err, repo.ErrUserNotFound) {
			return 0, err
		}
	}

	// Создаём нового пользователя без пароля
	return u.userRepo.AddUser(&entity.User{
		Nickname: nickname,
		Email:    email,
		OauthID:  &oauthID,
	})
}

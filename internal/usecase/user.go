package usecase

import "docvault-backend/internal/entity"

type User interface {
	// Register регистрирует нового пользователя и возвращает его идентификатор
	Register(req *entity.RegisterRequest) (int, error)
	// Login авторизует пользователя и возвращает его идентификатор
	Login(email, password string) (int, error)
	// GetUser возвращает профиль пользователя по его идентификатору
	GetUser(userID int) (*entity.UserProfile, error)
	// LoginWithOauth находит пользователя по идентификатору OAuth-провайдера,
	// либо привязывает его к аккаунту с тем же email, либо создаёт нового
	LoginWithOauth(oauthID, nickname, email string) (int, error)
}

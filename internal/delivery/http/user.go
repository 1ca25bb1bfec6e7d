package http

import (
	"errors"
	"net/http"
	"time"

	"docvault-backend/internal/delivery/http/utils"
	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"
	"docvault-backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type User struct {
	userUseCase   usecase.User
	authManager   utils.Auth
	cookieManager utils.Cookie
	oauth         *utils.OAuth
}

func NewUser(userUseCase usecase.User, authManager utils.Auth, cookieManager utils.Cookie, oauth *utils.OAuth) *User {
	return &User{
		userUseCase:   userUseCase,
		authManager:   authManager,
		cookieManager: cookieManager,
		oauth:         oauth,
	}
}

func (u *User) Configure(server *echo.Group) {
	server.POST("/register", u.Register)
	server.POST("/login", u.Login)
	server.GET("/me", u.Me)
	server.POST("/logout", u.Logout)
	server.GET("/oauth", u.OauthRedirect)
	server.GET("/oauth/callback", u.OauthCallback)
}

func (u *User) Register(c echo.Context) error {
	var registerRequest entity.RegisterRequest
	err := utils.ReadJSON(c, &registerRequest)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный формат запроса",
		})
	}
	userID, err := u.userUseCase.Register(&registerRequest)
	switch {
	case errors.Is(err, repo.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Пользователь с таким email уже существует",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при регистрации пользователя: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return u.issueSession(c, userID)
}

func (u *User) Login(c echo.Context) error {
	var loginRequest entity.LoginRequest
	err := utils.ReadJSON(c, &loginRequest)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный формат запроса",
		})
	}
	userID, err := u.userUseCase.Login(loginRequest.Email, loginRequest.Password)
	switch {
	case errors.Is(err, repo.ErrInvalidPassword):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Неверный email или пароль",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при авторизации пользователя: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return u.issueSession(c, userID)
}

func (u *User) Me(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при проверке авторизации пользователя: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	profile, err := u.userUseCase.GetUser(userID)
	if err != nil {
		c.Logger().Errorf("Ошибка при получении профиля пользователя: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return c.JSON(http.StatusOK, profile)
}

func (u *User) Logout(c echo.Context) error {
	c.SetCookie(u.cookieManager.ClearSessionCookie())
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Сессия завершена",
	})
}

func (u *User) OauthRedirect(c echo.Context) error {
	state := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
	})
	return c.JSON(http.StatusOK, echo.Map{
		"url": u.oauth.GetAuthURL(state),
	})
}

func (u *User) OauthCallback(c echo.Context) error {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный параметр state",
		})
	}
	token, err := u.oauth.Exchange(c.QueryParam("code"))
	if err != nil {
		c.Logger().Errorf("Ошибка при обмене кода авторизации: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error": "Не удалось завершить авторизацию через провайдера",
		})
	}
	oauthUser, err := u.oauth.FetchUser(token)
	if err != nil {
		c.Logger().Errorf("Ошибка при получении профиля у провайдера: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error": "Не удалось завершить авторизацию через провайдера",
		})
	}
	userID, err := u.userUseCase.LoginWithOauth(oauthUser.ID, oauthUser.Nickname, oauthUser.Email)
	if err != nil {
		c.Logger().Errorf("Ошибка при входе через OAuth: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return u.issueSession(c, userID)
}

func (u *User) issueSession(c echo.Context, userID int) error {
	token, err := u.authManager.CreateToken(userID)
	if err != nil {
		c.Logger().Errorf("Ошибка при создании токена: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	expires := time.Now().AddDate(1, 0, 0)
	c.SetCookie(u.cookieManager.SetSessionCookie(token, expires))
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": userID,
	})
}

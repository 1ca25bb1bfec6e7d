package utils

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// OAuthUser — профиль пользователя, полученный от OAuth-провайдера
type OAuthUser struct {
	ID       string
	Nickname string
	Email    string
}

// OAuth представляет конфигурацию внешнего OAuth-провайдера
type OAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewOAuth создает конфигурацию OAuth. По умолчанию используется GitHub.
func NewOAuth(clientID, clientSecret, redirectURL string) *OAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     github.Endpoint,
		Scopes:       []string{"read:user", "user:email"},
	}

	return &OAuth{
		config:      config,
		userInfoURL: "https://api.github.com/user",
	}
}

// GetAuthURL возвращает URL для авторизации у провайдера
func (o *OAuth) GetAuthURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Exchange обменивает код авторизации на токен
func (o *OAuth) Exchange(code string) (*oauth2.Token, error) {
	return o.config.Exchange(context.TODO(), code)
}

// FetchUser запрашивает профиль пользователя у провайдера
func (o *OAuth) FetchUser(token *oauth2.Token) (*OAuthUser, error) {
	client := o.config.Client(context.TODO(), token)
	resp, err := client.Get(o.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var profile struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}

	return &OAuthUser{
		ID:       fmt.Sprintf("%d", profile.ID),
		Nickname: profile.Login,
		Email:    profile.Email,
	}, nil
}

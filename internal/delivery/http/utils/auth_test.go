package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthManager_TokenRoundtrip(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), nil, time.Hour)

	token, err := manager.CreateToken(42)
	require.NoError(t, err)

	userID, err := manager.CheckAuth(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestAuthManager_WrongSecret(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), nil, time.Hour)
	other := NewAuthManager([]byte("other-secret"), nil, time.Hour)

	token, err := manager.CreateToken(42)
	require.NoError(t, err)

	_, err = other.CheckAuth(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthManager_ExpiredToken(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), nil, -time.Minute)

	token, err := manager.CreateToken(42)
	require.NoError(t, err)

	_, err = manager.CheckAuth(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthManager_GarbageToken(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), nil, time.Hour)

	_, err := manager.CheckAuth("not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthManager_CheckAuthFromContext(t *testing.T) {
	manager := NewAuthManager([]byte("secret"), nil, time.Hour)
	token, err := manager.CreateToken(42)
	require.NoError(t, err)

	server := echo.New()

	// С кукой
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	c := server.NewContext(req, httptest.NewRecorder())

	userID, err := manager.CheckAuthFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	// Без куки
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = server.NewContext(req, httptest.NewRecorder())

	_, err = manager.CheckAuthFromContext(c)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

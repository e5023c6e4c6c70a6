package handler

import (
	"net/http"
	"testing"

	appidentity "github.com/ecomstore/backend/internal/application/identity"
	"github.com/ecomstore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", appidentity.RegisterRequest{
		Name:     "Jane Doe",
		Email:    "Jane@Example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decodeData[appidentity.AuthResponse](t, w)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)
	require.NotNil(t, registered.User)
	assert.Equal(t, "jane@example.com", registered.User.Email)
	assert.Equal(t, "user", registered.User.Role)

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", appidentity.RegisterRequest{
			Name:     "Jane Again",
			Email:    "jane@example.com",
			Password: "password123",
		}, "")
		assertError(t, w, http.StatusConflict, dto.ErrCodeAlreadyExists, "User already exists with this email")
	})

	t.Run("login", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{
			Email:    "jane@example.com",
			Password: "password123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeData[appidentity.AuthResponse](t, w)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, registered.User.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{
			Email:    "jane@example.com",
			Password: "wrong-password",
		}, "")
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials, "Invalid credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		}, "")
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials, "Invalid credentials")
	})
}

func TestAuthHandler_Lockout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Locked Out", "locked@example.com", false)

	bad := appidentity.LoginRequest{Email: "locked@example.com", Password: "wrong-password"}
	for i := 0; i < 4; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", bad, "")
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials, "")
	}
	w := env.do(t, http.MethodPost, "/api/v1/auth/login", bad, "")
	assertError(t, w, http.StatusLocked, dto.ErrCodeAccountLocked, "")

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{
		Email:    "locked@example.com",
		Password: "password123",
	}, "")
	assertError(t, w, http.StatusLocked, dto.ErrCodeAccountLocked, "")
}

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "John Doe", "john@example.com", false)

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decodeData[appidentity.UserResponse](t, w)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "John Doe", me.Name)

	t.Run("no token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/auth/me", nil, "")
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Not authorized, no token")
	})

	t.Run("garbage token", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/auth/me", nil, "abc.def.ghi")
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Not authorized, token failed")
	})
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "John Doe", "john@example.com", false)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{
		Email:    "john@example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decodeData[appidentity.AuthResponse](t, w)

	t.Run("refresh", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/refresh",
			appidentity.RefreshTokenRequest{RefreshToken: login.RefreshToken}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeData[appidentity.AuthResponse](t, w)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/refresh",
			appidentity.RefreshTokenRequest{RefreshToken: login.Token}, "")
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "")
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, login.Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Logged out successfully", decodeData[dto.MessageResponse](t, w).Message)

		w = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, login.Token)
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Not authorized, token revoked")
	})
}

func TestAuthHandler_ProfileAndPassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "John Doe", "john@example.com", false)

	w := env.do(t, http.MethodPut, "/api/v1/auth/profile", appidentity.UpdateProfileRequest{Name: "Johnny"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Johnny", decodeData[appidentity.UserResponse](t, w).Name)

	w = env.do(t, http.MethodPut, "/api/v1/auth/password", appidentity.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "new-password",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{
		Email:    "john@example.com",
		Password: "new-password",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

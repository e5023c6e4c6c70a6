package identity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ecomstore/backend/internal/domain/identity"
	"github.com/ecomstore/backend/internal/domain/shared"
	"github.com/ecomstore/backend/internal/infrastructure/auth"
	"github.com/ecomstore/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	identity.PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

var errUserNotFound = shared.NewDomainError("NOT_FOUND", "User not found")

func newTestAuthService(repo *MockUserRepository) (*AuthService, *auth.JWTService, *auth.InMemoryTokenBlacklist) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "ecomstore-test",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(repo, jwtService, blacklist, DefaultAuthServiceConfig(), zap.NewNop())
	return svc, jwtService, blacklist
}

func newStoredUser(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("John Doe", "john@example.com", password)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a customer and returns tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService, _ := newTestAuthService(repo)
		repo.On("ExistsByEmail", ctx, "Jane@Example.com").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{Name: "Jane", Email: "Jane@Example.com", Password: "password123"})
		require.NoError(t, err)
		require.NotNil(t, resp.User)
		assert.Equal(t, "jane@example.com", resp.User.Email)
		assert.Equal(t, "user", resp.User.Role)
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := jwtService.ValidateAccessToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID.String(), claims.UserID)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("email already taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _, _ := newTestAuthService(repo)
		repo.On("ExistsByEmail", ctx, "john@example.com").Return(true, nil)

		_, err := svc.Register(ctx, RegisterRequest{Name: "John", Email: "john@example.com", Password: "password123"})
		assert.ErrorIs(t, err, identity.ErrEmailTaken)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials reset the failure count", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _, _ := newTestAuthService(repo)
		user := newStoredUser(t, "password123")
		user.FailedAttempts = 3
		repo.On("FindByEmail", ctx, "john@example.com").Return(user, nil)
		repo.On("Update", ctx, user).Return(nil)

		resp, err := svc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, 0, user.FailedAttempts)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("unknown email is indistinguishable from a bad password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, errUserNotFound)

		_, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("fifth failure locks the account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _, _ := newTestAuthService(repo)
		user := newStoredUser(t, "password123")
		repo.On("FindByEmail", ctx, "john@example.com").Return(user, nil)
		repo.On("Update", ctx, user).Return(nil)

		for i := 0; i < 4; i++ {
			_, err := svc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "wrong"})
			require.ErrorIs(t, err, identity.ErrInvalidCredentials)
		}
		_, err := svc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "wrong"})
		require.ErrorIs(t, err, identity.ErrAccountLocked)
		assert.True(t, user.IsLocked())

		_, err = svc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "password123"})
		assert.ErrorIs(t, err, identity.ErrAccountLocked)
		repo.AssertNumberOfCalls(t, "Update", 5)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a new pair with the current role", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService, _ := newTestAuthService(repo)
		user := newStoredUser(t, "password123")
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email, Role: "admin"})
		require.NoError(t, err)
		repo.On("FindByID", ctx, user.ID).Return(user, nil)

		resp, err := svc.Refresh(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		claims, err := jwtService.ValidateAccessToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "user", claims.Role)
		assert.Nil(t, resp.User)
	})

	t.Run("access tokens are not refresh tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService, _ := newTestAuthService(repo)
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Role: "user"})
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, RefreshTokenRequest{RefreshToken: pair.AccessToken})
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("deleted users cannot refresh", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService, _ := newTestAuthService(repo)
		id := uuid.New()
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: id, Role: "user"})
		require.NoError(t, err)
		repo.On("FindByID", ctx, id).Return(nil, errUserNotFound)

		_, err = svc.Refresh(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, jwtService, blacklist := newTestAuthService(repo)

	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Role: "user"})
	require.NoError(t, err)
	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, LogoutInput{TokenID: claims.ID, ExpiresAt: claims.GetExpiresAtTime()}))
	revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// already expired tokens need no entry
	require.NoError(t, svc.Logout(ctx, LogoutInput{TokenID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.Equal(t, 1, blacklist.Len())
}

func TestAuthService_ProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, _, _ := newTestAuthService(repo)
	user := newStoredUser(t, "password123")
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Update", ctx, user).Return(nil)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", me.Name)

	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: "Johnny"})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	require.Error(t, err)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newsecret"}))
	assert.True(t, user.VerifyPassword("newsecret"))
}

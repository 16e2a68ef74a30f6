package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/shared"
	"github.com/opsboard/backend/internal/infrastructure/auth"
	"github.com/opsboard/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testPassword = "correct-horse"

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser("u-ana", "ana", "Ana M.", identity.RoleBranchManager, "loc-nampula", testPassword)
	require.NoError(t, err)
	return u
}

func newTestAuthService(repo *MockUserRepository, bl auth.TokenBlacklist) *AuthService {
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough-32",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "opsboard-test",
	})
	return NewAuthService(repo, jwtSvc, bl, zap.NewNop())
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)

	t.Run("success issues tokens carrying role and location", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "ana").Return(user, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		svc := newTestAuthService(repo, nil)

		result, err := svc.Login(ctx, LoginInput{Username: "ana", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "BRANCH_MANAGER", result.User.Role)
		assert.Equal(t, "loc-nampula", result.User.LocationID)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := svc.jwtService.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u-ana", claims.UserID)
		assert.Equal(t, "loc-nampula", claims.LocationID)
		repo.AssertExpectations(t)
	})

	t.Run("save failure does not fail login", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "ana").Return(user, nil)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))
		svc := newTestAuthService(repo, nil)

		_, err := svc.Login(ctx, LoginInput{Username: "ana", Password: testPassword})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "ana").Return(user, nil)
		svc := newTestAuthService(repo, nil)

		_, err := svc.Login(ctx, LoginInput{Username: "ana", Password: "wrong-password"})
		assert.Equal(t, CodeInvalidCredentials, shared.CodeOf(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)
		svc := newTestAuthService(repo, nil)

		_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: testPassword})
		assert.Equal(t, CodeInvalidCredentials, shared.CodeOf(err))
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := *user
		inactive.Active = false
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "ana").Return(&inactive, nil)
		svc := newTestAuthService(repo, nil)

		_, err := svc.Login(ctx, LoginInput{Username: "ana", Password: testPassword})
		assert.Equal(t, CodeAccountInactive, shared.CodeOf(err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	repo := new(MockUserRepository)
	repo.On("FindByUsername", ctx, "ana").Return(user, nil)
	repo.On("Save", ctx, mock.Anything).Return(nil)
	svc := newTestAuthService(repo, nil)

	login, err := svc.Login(ctx, LoginInput{Username: "ana", Password: testPassword})
	require.NoError(t, err)

	moved := *user
	moved.LocationID = "loc-beira"
	repo.On("FindByID", ctx, "u-ana").Return(&moved, nil)

	result, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	claims, err := svc.jwtService.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "loc-beira", claims.LocationID)

	_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.AccessToken})
	assert.Equal(t, CodeTokenInvalid, shared.CodeOf(err))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	bl := auth.NewInMemoryTokenBlacklist()
	svc := newTestAuthService(new(MockUserRepository), bl)

	require.NoError(t, svc.Logout(ctx, LogoutInput{UserID: "u-ana", TokenID: "jti-1", RemainingTTL: time.Minute}))
	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	noBlacklist := newTestAuthService(new(MockUserRepository), nil)
	assert.NoError(t, noBlacklist.Logout(ctx, LogoutInput{UserID: "u-ana", TokenID: "jti-2"}))
}

func TestUserService_ResolveActor(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	inactive := *user
	inactive.ID = "u-old"
	inactive.Active = false

	repo := new(MockUserRepository)
	repo.On("FindByID", ctx, "u-ana").Return(user, nil)
	repo.On("FindByID", ctx, "u-old").Return(&inactive, nil)
	repo.On("FindByID", ctx, "u-ghost").Return(nil, shared.ErrNotFound)
	repo.On("FindByID", ctx, "u-err").Return(nil, errors.New("db down"))
	svc := NewUserService(repo)

	actor, err := svc.ResolveActor(ctx, "u-ana")
	require.NoError(t, err)
	assert.Equal(t, identity.Actor{UserID: "u-ana", Role: identity.RoleBranchManager, LocationID: "loc-nampula"}, actor)

	_, err = svc.ResolveActor(ctx, "u-old")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.ResolveActor(ctx, "u-ghost")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.ResolveActor(ctx, "u-err")
	require.Error(t, err)
	assert.Empty(t, shared.CodeOf(err))
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindAll", ctx).Return([]identity.User{
		{ID: "u-2", Username: "zeca", Role: identity.RoleFieldWorker, LocationID: "loc-field-a", Active: true},
		{ID: "u-1", Username: "ana", Role: identity.RoleBranchManager, LocationID: "loc-nampula", Active: true},
	}, nil)

	users, err := NewUserService(repo).List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ana", users[0].Username)
	assert.Equal(t, "FIELD_WORKER", users[1].Role)
}

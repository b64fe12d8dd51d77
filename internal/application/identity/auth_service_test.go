package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tierquote/backend/internal/domain/identity"
	"github.com/tierquote/backend/internal/domain/shared"
	"github.com/tierquote/backend/internal/infrastructure/auth"
	"github.com/tierquote/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.Repository
type MockUserRepository struct {
	mock.Mock
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

func (m *MockUserRepository) FindActiveAdmins(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newAuthService(repo *MockUserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-unit-tests-only-0001",
		Expiration: time.Hour,
		Issuer:     "tierquote",
	})
	return NewAuthService(repo, jwtService, zap.NewNop())
}

func activeUser(t *testing.T, password string) *identity.User {
	user, err := identity.NewUser("sam@example.com", "Sam Ortiz", identity.RoleSales)
	require.NoError(t, err)
	require.NoError(t, user.SetPassword(password))
	return user
}

func TestAuthService_Login(t *testing.T) {
	t.Run("issues token for valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo)
		user := activeUser(t, "correct horse battery")

		repo.On("FindByEmail", mock.Anything, "sam@example.com").Return(user, nil)

		resp, err := svc.Login(context.Background(), LoginRequest{
			Email:    "Sam@Example.com",
			Password: "correct horse battery",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, user.ID.String(), resp.User.ID)
		assert.Equal(t, "SALES", resp.User.Role)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo)
		user := activeUser(t, "correct horse battery")

		repo.On("FindByEmail", mock.Anything, "sam@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "sam@example.com",
			Password: "wrong",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("unknown email reports same error as bad password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo)

		repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo)
		user := activeUser(t, "correct horse battery")
		user.IsActive = false

		repo.On("FindByEmail", mock.Anything, "sam@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "sam@example.com",
			Password: "correct horse battery",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}

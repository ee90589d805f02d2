package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"updoot/internal/models"
	"updoot/internal/repositories"
	"updoot/internal/services"
	"updoot/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetMany(ids []uint) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(id uint, hash string) error {
	args := m.Called(id, hash)
	return args.Error(0)
}

// MockCmdable mocks the slice of the redis client the auth flow uses.
type MockCmdable struct {
	mock.Mock
}

func (m *MockCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func newAuthService(users *MockUserRepository, rdb *MockCmdable) *services.AuthService {
	logger := zap.NewNop().Sugar()
	return services.NewAuthService(users, rdb, services.NewMailService(logger), logger)
}

func TestRegister_Validation(t *testing.T) {
	service := newAuthService(new(MockUserRepository), new(MockCmdable))

	cases := []struct {
		name  string
		input services.RegisterInput
		field string
	}{
		{"bad email", services.RegisterInput{Username: "alice", Email: "not-an-email", Password: "secret"}, "Email"},
		{"short username", services.RegisterInput{Username: "abc", Email: "a@example.com", Password: "secret"}, "Username"},
		{"at in username", services.RegisterInput{Username: "al@ce", Email: "a@example.com", Password: "secret"}, "Username"},
		{"short password", services.RegisterInput{Username: "alice", Email: "a@example.com", Password: "abc"}, "Password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Register(tc.input)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
			assert.Equal(t, tc.field, verrs[0].Field())
		})
	}
}

func TestRegister_Success(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers, new(MockCmdable))

	mockUsers.On("Create", mock.MatchedBy(func(u *models.User) bool {
		// Stored hashed, never plaintext.
		return u.Username == "alice" && u.Password != "secret" && utils.CheckPassword(u.Password, "secret")
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 1
	}).Return(nil).Once()

	user, err := service.Register(services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret",
	})

	assert.NoError(t, err)
	assert.EqualValues(t, 1, user.ID)
	mockUsers.AssertExpectations(t)
}

func TestRegister_DuplicateUser(t *testing.T) {
	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers, new(MockCmdable))

	mockUsers.On("Create", mock.Anything).Return(repositories.ErrDuplicateKey).Once()

	_, err := service.Register(services.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret",
	})

	assert.ErrorIs(t, err, services.ErrUserExists)
	mockUsers.AssertExpectations(t)
}

func TestLogin_ByUsernameAndByEmail(t *testing.T) {
	hash, _ := utils.HashPassword("secret")
	stored := &models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: hash}

	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers, new(MockCmdable))

	mockUsers.On("GetByUsername", "alice").Return(stored, nil).Once()
	user, err := service.Login("alice", "secret")
	assert.NoError(t, err)
	assert.Equal(t, stored, user)

	// An identifier containing "@" resolves as an email.
	mockUsers.On("GetByEmail", "alice@example.com").Return(stored, nil).Once()
	user, err = service.Login("alice@example.com", "secret")
	assert.NoError(t, err)
	assert.Equal(t, stored, user)

	mockUsers.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash, _ := utils.HashPassword("secret")
	stored := &models.User{ID: 1, Username: "alice", Password: hash}

	mockUsers := new(MockUserRepository)
	service := newAuthService(mockUsers, new(MockCmdable))

	mockUsers.On("GetByUsername", "nobody").Return(nil, repositories.ErrNotFound).Once()
	_, err := service.Login("nobody", "secret")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockUsers.On("GetByUsername", "alice").Return(stored, nil).Once()
	_, err = service.Login("alice", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockUsers.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmailSilentlySucceeds(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRdb := new(MockCmdable)
	service := newAuthService(mockUsers, mockRdb)

	mockUsers.On("GetByEmail", "ghost@example.com").Return(nil, repositories.ErrNotFound).Once()

	err := service.ForgotPassword(context.Background(), "ghost@example.com")

	assert.NoError(t, err)
	mockRdb.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUsers.AssertExpectations(t)
}

func TestForgotPassword_StoresTokenAndCoolsDown(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockRdb := new(MockCmdable)
	service := newAuthService(mockUsers, mockRdb)

	stored := &models.User{ID: 9, Username: "carol", Email: "carol@example.com"}
	mockUsers.On("GetByEmail", "carol@example.com").Return(stored, nil).Once()
	mockRdb.On("Set", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "forget-password:")
	}), stored.ID, time.Hour).Return(redis.NewStatusResult("OK", nil)).Once()

	err := service.ForgotPassword(context.Background(), "carol@example.com")
	assert.NoError(t, err)

	// A repeat request inside the cooldown never hits the store again.
	err = service.ForgotPassword(context.Background(), "carol@example.com")
	assert.NoError(t, err)

	mockUsers.AssertExpectations(t)
	mockRdb.AssertExpectations(t)
}

func TestChangePassword(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		service := newAuthService(new(MockUserRepository), new(MockCmdable))
		_, err := service.ChangePassword(context.Background(), "token", "abc")
		assert.ErrorIs(t, err, services.ErrPasswordTooShort)
	})

	t.Run("expired token", func(t *testing.T) {
		mockRdb := new(MockCmdable)
		service := newAuthService(new(MockUserRepository), mockRdb)

		mockRdb.On("Get", mock.Anything, "forget-password:gone").
			Return(redis.NewStringResult("", redis.Nil)).Once()

		_, err := service.ChangePassword(context.Background(), "gone", "newsecret")
		assert.ErrorIs(t, err, services.ErrTokenExpired)
		mockRdb.AssertExpectations(t)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockRdb := new(MockCmdable)
		service := newAuthService(mockUsers, mockRdb)

		mockRdb.On("Get", mock.Anything, "forget-password:tok").
			Return(redis.NewStringResult("9", nil)).Once()
		mockUsers.On("GetByID", uint(9)).Return(nil, repositories.ErrNotFound).Once()

		_, err := service.ChangePassword(context.Background(), "tok", "newsecret")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("success consumes the token", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockRdb := new(MockCmdable)
		service := newAuthService(mockUsers, mockRdb)

		oldHash, _ := utils.HashPassword("oldsecret")
		stored := &models.User{ID: 9, Username: "carol", Password: oldHash}

		mockRdb.On("Get", mock.Anything, "forget-password:tok").
			Return(redis.NewStringResult("9", nil)).Once()
		mockUsers.On("GetByID", uint(9)).Return(stored, nil).Once()
		mockUsers.On("UpdatePassword", uint(9), mock.MatchedBy(func(hash string) bool {
			return utils.CheckPassword(hash, "newsecret")
		})).Return(nil).Once()
		mockRdb.On("Del", mock.Anything, []string{"forget-password:tok"}).
			Return(redis.NewIntResult(1, nil)).Once()

		user, err := service.ChangePassword(context.Background(), "tok", "newsecret")
		assert.NoError(t, err)
		assert.EqualValues(t, 9, user.ID)
		assert.True(t, utils.CheckPassword(user.Password, "newsecret"))

		mockUsers.AssertExpectations(t)
		mockRdb.AssertExpectations(t)
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"updoot/internal/cache"
	"updoot/internal/kv"
	"updoot/internal/models"
	"updoot/internal/repositories"
	"updoot/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	forgetPasswordPrefix = "forget-password:"
	resetTokenTTL        = time.Hour
	resetMailCooldown    = 10 * time.Minute
)

// ErrPasswordTooShort rejects new passwords below the minimum length.
var ErrPasswordTooShort = errors.New("password length less than 4")

// RegisterInput carries the signup form. Usernames must not look like an
// email address, otherwise login-by-username-or-email becomes ambiguous.
type RegisterInput struct {
	Username string `json:"username" validate:"required,gt=3,excludes=@"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,gt=3"`
}

// AuthService handles registration, login and the password-reset flow.
// Session cookies themselves are the HTTP layer's business.
type AuthService struct {
	users    repositories.UserRepository
	rdb      kv.Cmdable
	mail     *MailService
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewAuthService(users repositories.UserRepository, rdb kv.Cmdable, mail *MailService, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:    users,
		rdb:      rdb,
		mail:     mail,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register validates the input, hashes the password and creates the user.
// Returns validator.ValidationErrors for bad input and ErrUserExists when the
// username or email is taken.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login resolves the identifier as an email when it contains "@", otherwise
// as a username, and checks the password.
func (s *AuthService) Login(usernameOrEmail, password string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(usernameOrEmail, "@") {
		user, err = s.users.GetByEmail(usernameOrEmail)
	} else {
		user, err = s.users.GetByUsername(usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ForgotPassword mails a reset link when the email is known. Unknown emails
// succeed silently so the endpoint cannot be used to probe for accounts.
// Repeat requests for the same address are dropped while the cooldown runs.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	cooldownKey := "reset-mail:" + email
	if cache.Get().GetValue(cooldownKey) != nil {
		return nil
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.rdb.Set(ctx, forgetPasswordPrefix+token, user.ID, resetTokenTTL).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	cache.Get().Set(cooldownKey, true, resetMailCooldown)

	link := fmt.Sprintf("%s/change-password/%s", appBaseURL(), token)
	s.mail.SendPasswordReset(email, link)
	s.logger.Infow("password reset mailed", "user_id", user.ID)
	return nil
}

// ChangePassword consumes a reset token and sets the new password. The user
// is returned so the handler can log them in.
func (s *AuthService) ChangePassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	if len(newPassword) <= 3 {
		return nil, ErrPasswordTooShort
	}

	key := forgetPasswordPrefix + token
	idStr, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to resolve reset token: %w", err)
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return nil, ErrTokenExpired
	}

	user, err := s.users.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(user.ID, hash); err != nil {
		return nil, err
	}
	user.Password = hash

	// One-shot token.
	s.rdb.Del(ctx, key)

	s.logger.Infow("password changed", "user_id", user.ID)
	return user, nil
}

func appBaseURL() string {
	if url := os.Getenv("APP_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evseenkov/swapwear-backend/internal/dto"
	"github.com/evseenkov/swapwear-backend/internal/logger"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/repository"
	"github.com/evseenkov/swapwear-backend/internal/validation"
)

// AuthUserRepository описывает хранилище пользователей, необходимое авторизации.
type AuthUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService отвечает за регистрацию, вход и обновление токенов.
type AuthService struct {
	users  AuthUserRepository
	tokens *TokenManager
}

// NewAuthService создаёт новый экземпляр.
func NewAuthService(users AuthUserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// SessionMeta метаданные клиента для записи сессии.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// Register создаёт пользователя и возвращает пару токенов.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest, meta SessionMeta) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("имя пользователя", username, validation.MinUsernameLength, validation.MaxUsernameLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить пользователя")
	}
	if exists {
		return nil, apperror.New(apperror.ErrCodeConflict, "пользователь с таким email или именем уже существует")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обработать пароль")
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать пользователя")
	}

	logger.Log.WithField("user_id", user.ID).Info("auth: user registered")

	return s.issueTokens(ctx, user, meta)
}

// Login проверяет учётные данные и возвращает пару токенов.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, meta SessionMeta) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "неверный email или пароль")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выполнить вход")
	}

	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "учётная запись заблокирована")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "неверный email или пароль")
	}

	if err := s.users.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.Log.WithError(err).Warn("auth: failed to update last login")
	}

	return s.issueTokens(ctx, user, meta)
}

// Refresh выдаёт новую пару токенов по действующему refresh-токену.
// Старая сессия удаляется: токен одноразовый.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta SessionMeta) (*dto.AuthResponse, error) {
	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "недействительный refresh-токен")
	}

	session, err := s.users.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена или истекла")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить сессию")
	}
	if session.UserID != userID {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "недействительный refresh-токен")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить пользователя")
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "учётная запись заблокирована")
	}

	if err := s.users.DeleteSession(ctx, refreshToken); err != nil {
		logger.Log.WithError(err).Warn("auth: failed to delete old session")
	}

	return s.issueTokens(ctx, user, meta)
}

// Logout завершает сессию по refresh-токену.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.users.DeleteSession(ctx, refreshToken); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить сессию")
	}
	return nil
}

// Me возвращает профиль текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить пользователя")
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, meta SessionMeta) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.NewAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}

	refreshToken, expiresAt, err := s.tokens.NewRefreshToken(user.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить refresh-токен")
	}

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IPAddress != "" {
		session.IPAddress = &meta.IPAddress
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить сессию")
	}

	return &dto.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

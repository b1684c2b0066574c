package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/session"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// Uniform client-facing messages. Unknown email, wrong password and inactive
// account must be indistinguishable to the caller.
const (
	msgInvalidCredentials  = "invalid email or password"
	msgInvalidRefreshToken = "invalid refresh token"
	msgUserNotFound        = "user not found or inactive"
	msgForgotPassword      = "If an account with that email exists, a password reset link has been sent"
)

// Spent verifying a password when the email does not resolve to a user, so
// the two paths cost the same. Hash of an arbitrary throwaway string.
const enumerationDummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthService sequences the credential and session lifecycle protocols:
// register, login, refresh, logout and password reset.
type AuthService struct {
	users      repository.UserRepository
	sessions   session.Store
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	SessionStore session.Store
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionStore,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.Issuer,
			cfg.Auth.Audience,
			cfg.Auth.AccessTokenTTL(),
			cfg.Auth.RefreshTokenTTL(),
		),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.ResetTokenTTL(),
	}
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a new customer account and establishes its session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		s.metrics.RecordAuthOutcome("register", "duplicate_email")
		return nil, nil, apperrors.NewConflict("User with this email already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, nil, err
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		Role:      user.Role,
	})
	s.metrics.RecordAuthOutcome("register", "success")
	s.logger.Info("user registered", zap.String("email", user.Email))

	return user, pair, nil
}

// Login authenticates an email+password pair. All failure causes produce the
// same 401 response.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			auth.VerifyPassword(enumerationDummyHash, password)
			s.metrics.RecordAuthOutcome("login", "failure")
			return nil, nil, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, password) || !user.IsActive {
		s.metrics.RecordAuthOutcome("login", "failure")
		return nil, nil, apperrors.NewUnauthorized(msgInvalidCredentials)
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordAuthOutcome("login", "success")
	s.logger.Info("user logged in", zap.String("email", user.Email))
	return user, pair, nil
}

// Refresh mints a new access token for a live session. The refresh token
// itself is not rotated. Absence of a session entry, for whatever reason
// (logout, a newer login or the store being unreachable) denies the refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokenMgr.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.metrics.RecordAuthOutcome("refresh", "failure")
		return "", time.Time{}, apperrors.NewUnauthorized(msgInvalidRefreshToken)
	}

	stored, ok := s.sessions.Get(ctx, session.RefreshTokenKey(claims.UserID))
	if !ok || stored != refreshToken {
		s.metrics.RecordAuthOutcome("refresh", "failure")
		return "", time.Time{}, apperrors.NewUnauthorized(msgInvalidRefreshToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.metrics.RecordAuthOutcome("refresh", "failure")
			return "", time.Time{}, apperrors.NewUnauthorized(msgUserNotFound)
		}
		return "", time.Time{}, err
	}
	if !user.IsActive {
		s.metrics.RecordAuthOutcome("refresh", "failure")
		return "", time.Time{}, apperrors.NewUnauthorized(msgUserNotFound)
	}

	accessToken, exp, err := s.tokenMgr.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", time.Time{}, err
	}

	s.metrics.RecordAuthOutcome("refresh", "success")
	return accessToken, exp, nil
}

// Logout removes the session entry named by the refresh token. An expired
// token still identifies its session and must delete it; only tokens whose
// signature or shape do not check out are ignored. Logout always succeeds
// from the caller's point of view.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.tokenMgr.ExtractRefreshClaims(refreshToken)
	if err != nil {
		return
	}
	s.sessions.Delete(ctx, session.RefreshTokenKey(claims.UserID))
	s.metrics.RecordAuthOutcome("logout", "success")
}

// ForgotPassword attaches a single-use reset token to the user record when
// the email exists. The caller-visible outcome is identical either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := time.Now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		Email:     user.Email,
		ExpiresAt: expiry,
	})
	s.logger.Info("password reset token generated", zap.String("email", user.Email))
	return nil
}

// ResetPassword replaces the password hash for an unexpired reset token and
// clears the token in the same statement.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	user, err := s.users.ResetPasswordByToken(ctx, token, hash)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewValidationError("Invalid or expired reset token", nil)
		}
		return err
	}

	s.publish(ctx, events.EventPasswordResetCompleted, user.ID, events.PasswordResetCompletedPayload{
		Email: user.Email,
	})
	s.logger.Info("password reset successful", zap.String("email", user.Email))
	return nil
}

// ChangePassword replaces the authenticated user's password after verifying
// the current one. The swap is a single statement; existing sessions stay
// alive.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if !auth.VerifyPassword(user.PasswordHash, currentPassword) {
		return apperrors.NewValidationError("Current password is incorrect", nil)
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("email", user.Email))
	return nil
}

// ForgotPasswordMessage is the uniform response body for forgot-password.
func (s *AuthService) ForgotPasswordMessage() string {
	return msgForgotPassword
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// issueSession mints an access+refresh pair and records the refresh token as
// the user's single live session. The overwrite is the invalidation of any
// prior refresh token; last writer wins per user key.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, accessExp, err := s.tokenMgr.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := s.tokenMgr.IssueRefreshToken(user.ID, uuid.NewString())
	if err != nil {
		return nil, err
	}

	s.sessions.Put(ctx, session.RefreshTokenKey(user.ID), refreshToken, s.tokenMgr.RefreshTTL())

	return &domain.TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// hashPassword wraps bcrypt hashing. bcrypt caps input at 72 bytes; longer
// passwords are a client error, not a server fault.
func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewValidationError("Password must be 72 bytes or fewer", nil)
		}
		return "", err
	}
	return hash, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

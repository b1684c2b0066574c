package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// UserService covers the admin-facing user management surface.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// UserPage is a page of user records plus pagination bookkeeping.
type UserPage struct {
	Users      []domain.User
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// ListUsers returns a filtered page sorted by creation time, newest first.
func (s *UserService) ListUsers(ctx context.Context, page, limit int, filters repository.ListFilters) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	filters.Offset = (page - 1) * limit
	filters.Limit = limit

	users, err := s.users.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	total, err := s.users.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &UserPage{
		Users:      users,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(filters.Offset+len(users)) < total,
		HasPrev:    page > 1,
	}, nil
}

// GetUser fetches a single user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput is the admin patch. Nil fields are left untouched.
type UpdateUserInput struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	Role            *domain.Role
	IsEmailVerified *bool
	IsPhoneVerified *bool
}

// UpdateUser applies an admin patch to the allowed profile fields only.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", nil)
		}
		user.Role = *input.Role
	}
	if input.IsEmailVerified != nil {
		user.IsEmailVerified = *input.IsEmailVerified
	}
	if input.IsPhoneVerified != nil {
		user.IsPhoneVerified = *input.IsPhoneVerified
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	s.logger.Info("user updated by admin", zap.String("email", user.Email))
	return user, nil
}

// ProfileInput is the self-service patch. It deliberately excludes role and
// verification flags; those stay admin-only.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateOwnProfile applies a user's own edits to name and phone.
func (s *UserService) UpdateOwnProfile(ctx context.Context, id string, input ProfileInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	s.logger.Info("profile updated", zap.String("email", user.Email))
	return user, nil
}

// DeleteUser removes a user record.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	s.logger.Info("user deleted by super admin", zap.String("email", user.Email))
	return nil
}

// SetUserActive flips the active flag in a single update. Deactivation emits
// an event so downstream consumers can react.
func (s *UserService) SetUserActive(ctx context.Context, id, actorID string, active bool) (*domain.User, error) {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !active && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserDeactivated,
			UserID:    user.ID,
			Timestamp: time.Now(),
			Payload:   events.UserDeactivatedPayload{Email: user.Email, ActorID: actorID},
		})
	}

	s.logger.Info("user active flag changed",
		zap.String("email", user.Email), zap.Bool("active", active))
	return user, nil
}

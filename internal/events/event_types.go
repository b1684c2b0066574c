package events

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
	EventUserDeactivated        EventType = "user_deactivated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	Role      domain.Role `json:"role"`
}

// PasswordResetRequestedPayload payload. The reset token itself is delivered
// out of band and never logged.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordResetCompletedPayload payload.
type PasswordResetCompletedPayload struct {
	Email string `json:"email"`
}

// UserDeactivatedPayload payload.
type UserDeactivatedPayload struct {
	Email   string `json:"email"`
	ActorID string `json:"actor_id"`
}

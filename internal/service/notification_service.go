package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
)

// NotificationService handles emitting notifications for auth events. Email
// and webhook delivery are stubs; the consumption seam is real and the
// notification worker drives it off the request path.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// EventTypes lists the event types this service consumes.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventUserRegistered,
		events.EventPasswordResetRequested,
		events.EventPasswordResetCompleted,
		events.EventUserDeactivated,
	}
}

// Handle routes a single event to its notification stub.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventUserRegistered:
		return n.handleUserRegistered(ctx, event)
	case events.EventPasswordResetRequested:
		return n.handlePasswordResetRequested(ctx, event)
	case events.EventPasswordResetCompleted:
		return n.handlePasswordResetCompleted(ctx, event)
	case events.EventUserDeactivated:
		return n.handleUserDeactivated(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("PasswordResetRequested", zap.String("user_id", event.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordResetCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("PasswordResetCompleted", zap.String("user_id", event.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserDeactivated(ctx context.Context, event events.Event) error {
	n.logger.Info("UserDeactivated", zap.String("user_id", event.UserID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

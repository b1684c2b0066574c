package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/service"
)

const queueSize = 64

// NotificationWorker drains auth events onto the notification service off the
// request path. Dispatcher handlers only enqueue; a single goroutine does the
// delivery. A full queue drops the event rather than blocking a request.
type NotificationWorker struct {
	queue   chan events.Event
	done    chan struct{}
	service *service.NotificationService
	logger  *zap.Logger
}

// StartNotificationWorker subscribes the worker to the notification event
// types and starts its consumer goroutine.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		queue:   make(chan events.Event, queueSize),
		done:    make(chan struct{}),
		service: notificationService,
		logger:  logger,
	}

	for _, eventType := range notificationService.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	go w.run()
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID))
	}
	return nil
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		if err := w.service.Handle(context.Background(), event); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
}

// Stop closes the queue and waits for the remaining events to be delivered.
func (w *NotificationWorker) Stop() {
	close(w.queue)
	<-w.done
}

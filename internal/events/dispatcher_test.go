package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventUserRegistered, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		ID:        "event-1",
		Type:      EventUserRegistered,
		UserID:    "user-1",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "user-1", received[0].UserID)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventUserDeactivated, func(context.Context, Event) error {
		called = true
		return nil
	})

	_ = dispatcher.Publish(context.Background(), Event{Type: EventUserRegistered})
	assert.False(t, called)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	secondCalled := false
	dispatcher.Subscribe(EventPasswordResetRequested, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventPasswordResetRequested, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventPasswordResetRequested})
	require.NoError(t, err)
	assert.True(t, secondCalled)
}

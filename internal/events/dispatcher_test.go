package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishInvokesAllHandlersDespiteFailure(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	boom := errors.New("handler exploded")
	var calls []string

	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishNoHandlersReturnsNil(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCommentAdded}))
}

func TestPublishOnlyMatchingType(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	var invoked bool
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		invoked = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketStatusChanged}))
	assert.False(t, invoked)
}

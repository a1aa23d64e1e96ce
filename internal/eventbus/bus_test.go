package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriKB/internal/models"
)

func TestPublishStateKeepsNewest(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	for i := 0; i < 500; i++ {
		require.NoError(t, eb.PublishState(StateUpdateEvent{
			Messages: []models.Message{{Content: string(rune('a' + i%26))}},
		}))
	}

	select {
	case state := <-eb.States():
		assert.Equal(t, string(rune('a'+499%26)), state.Messages[0].Content)
	default:
		t.Fatal("no state published")
	}

	select {
	case <-eb.States():
		t.Fatal("stale state left on the bus")
	default:
	}
}

func TestSendToCore(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	require.NoError(t, eb.SendToCore(SendMessageEvent{Message: "hi"}))
	event := <-eb.UIToCore()
	assert.Equal(t, SendMessageEvent{Message: "hi"}, event)
}

func TestCircuitBreakerOpensWhenChannelFull(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	for i := 0; i < cap(eb.coreToUI); i++ {
		require.NoError(t, eb.SendToUI(ConfirmationRequestEvent{ID: "x"}))
	}
	for i := 0; i < 5; i++ {
		assert.Error(t, eb.SendToUI(ConfirmationRequestEvent{ID: "overflow"}))
	}

	assert.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())
	assert.ErrorIs(t, eb.SendToUI(ConfirmationRequestEvent{}), ErrCircuitOpen)
	assert.NotEmpty(t, reported)
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestClosedBus(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Close()

	assert.ErrorIs(t, eb.SendToCore(SendMessageEvent{}), ErrClosed)
	assert.ErrorIs(t, eb.SendToUI(ConfirmationRequestEvent{}), ErrClosed)
	assert.ErrorIs(t, eb.PublishState(StateUpdateEvent{}), ErrClosed)

	_, ok := <-eb.States()
	assert.False(t, ok)
}

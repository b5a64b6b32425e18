package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitty/internal/app/broker"
)

func TestNewMessagePayloadShape(t *testing.T) {
	from := map[string]any{"name": "alice", "key": "key-1"}
	msg := NewMessage(from, "general", "hello", map[string]any{"type": TypeMessage})

	assert.Equal(t, "general", msg.Topic)
	assert.Equal(t, from, msg.Payload["from"])
	assert.Equal(t, "hello", msg.Payload["message"])
	assert.Equal(t, "general", msg.Payload["topic"])
	assert.Equal(t, TypeMessage, msg.Payload["type"])

	date, ok := msg.Payload["date"].(float64)
	require.True(t, ok)
	assert.Greater(t, date, float64(0))
}

func TestMessageBytesMemoized(t *testing.T) {
	msg := NewMessage(map[string]any{"name": "alice"}, "general", "hi", nil)

	first, err := msg.Bytes()
	require.NoError(t, err)

	// Later payload mutation must not change the serialized form.
	msg.Payload["message"] = "changed"

	second, err := msg.Bytes()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(second, &decoded))
	assert.Equal(t, "hi", decoded["message"])
}

func TestMessageBytesConcurrentFirstAccess(t *testing.T) {
	msg := NewMessage(map[string]any{"name": "alice"}, "general", "hi", nil)

	const readers = 16
	results := make([][]byte, readers)

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := msg.Bytes()
			assert.NoError(t, err)
			results[i] = raw
		}(i)
	}
	wg.Wait()

	for i := 1; i < readers; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestMessagePublish(t *testing.T) {
	bus := broker.NewMemBus()
	feed, err := bus.Feed(context.Background(), "general")
	require.NoError(t, err)

	msg := NewMessage(map[string]any{"name": "alice"}, "general", "hi", nil)
	require.NoError(t, msg.Publish(context.Background(), bus))

	got := drain(t, feed)
	assert.Equal(t, "general", got.Topic)

	raw, err := msg.Bytes()
	require.NoError(t, err)
	assert.Equal(t, raw, got.Payload)
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitty/internal/app/broker"
	"chitty/internal/app/user"
	"chitty/internal/pkg/logx"
)

// frameClient builds a client wired to a stub router, without a
// connection. processFrame and the send queue never touch the socket.
func frameClient(router *Router) *Client {
	u := user.New("alice", "sess-1", "key-1", nil, DefaultTopics...)
	return NewClient(nil, u, router, *logx.Logger(), func() {})
}

func queuedPayload(t *testing.T, c *Client) map[string]any {
	t.Helper()

	select {
	case data := <-c.send:
		var payload map[string]any
		require.NoError(t, json.Unmarshal(data, &payload))
		return payload
	default:
		t.Fatal("expected a queued payload")
		return nil
	}
}

func TestProcessFrameMalformedJSON(t *testing.T) {
	c := frameClient(testRouterWith(nil))

	for _, frame := range [][]byte{
		[]byte("not json"),
		[]byte(`"a string"`),
		[]byte(`[1, 2, 3]`),
		[]byte(`null`),
	} {
		c.processFrame(context.Background(), frame)

		payload := queuedPayload(t, c)
		assert.Equal(t, "error", payload["status"])
		errBody := payload["error"].(map[string]any)
		assert.Equal(t, "E_REASON_MALFORMED", errBody["reason"])
	}
}

func TestProcessFrameUnknownType(t *testing.T) {
	c := frameClient(testRouterWith(nil))

	c.processFrame(context.Background(), []byte(`{"type":"bogus"}`))

	payload := queuedPayload(t, c)
	assert.Equal(t, "error", payload["status"])
	errBody := payload["error"].(map[string]any)
	assert.Equal(t, "E_REASON_TYPE_INVALID", errBody["reason"])
}

func TestProcessFrameStampsReplyType(t *testing.T) {
	router := testRouterWith(func(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
		return map[string]any{"name": u.Name}, nil
	})
	c := frameClient(router)

	c.processFrame(context.Background(), []byte(`{"type":"msg","to":"general","value":"hi"}`))

	payload := queuedPayload(t, c)
	assert.Equal(t, "msg", payload["type"])
	assert.Equal(t, "alice", payload["name"])
}

func TestProcessFrameLeavesErrorPayloadUnstamped(t *testing.T) {
	router := testRouterWith(func(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
		return map[string]any{
			"status": "error",
			"error":  map[string]any{"reason": "E_REASON_NOTREG", "message": "nope"},
		}, nil
	})
	c := frameClient(router)

	c.processFrame(context.Background(), []byte(`{"type":"msg","to":"general","value":"hi"}`))

	payload := queuedPayload(t, c)
	assert.NotContains(t, payload, "type")
	assert.Equal(t, "error", payload["status"])
}

func TestProcessFrameHandlerFault(t *testing.T) {
	router := testRouterWith(func(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
		return nil, errors.New("broker down")
	})
	c := frameClient(router)

	c.processFrame(context.Background(), []byte(`{"type":"msg","to":"general","value":"hi"}`))

	payload := queuedPayload(t, c)
	errBody := payload["error"].(map[string]any)
	assert.Equal(t, "E_WEB_INTERNAL", errBody["reason"])
}

func TestProcessFrameNilReplySendsNothing(t *testing.T) {
	router := testRouterWith(func(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
		return nil, nil
	})
	c := frameClient(router)

	c.processFrame(context.Background(), []byte(`{"type":"msg","to":"general","value":"hi"}`))

	select {
	case data := <-c.send:
		t.Fatalf("unexpected payload queued: %s", data)
	default:
	}
}

func TestWriteLoopFailsWhenFeedCloses(t *testing.T) {
	bus := broker.NewMemBus()
	feed, err := bus.Feed(context.Background(), "general")
	require.NoError(t, err)

	u := user.New("alice", "sess-1", "key-1", feed, DefaultTopics...)
	c := NewClient(nil, u, testRouterWith(nil), *logx.Logger(), func() {})

	require.NoError(t, feed.Close())

	// A dead feed must surface as an error so the errgroup cancels the
	// reader instead of letting it wait out its deadline.
	err = c.writeLoop(context.Background())
	assert.ErrorIs(t, err, errFeedClosed)
}

func TestEnqueuePayloadDropsWhenFull(t *testing.T) {
	c := frameClient(testRouterWith(nil))

	for i := 0; i < sendQueueSize+5; i++ {
		c.enqueuePayload(map[string]any{"n": i})
	}

	assert.Len(t, c.send, sendQueueSize)
}

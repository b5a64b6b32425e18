package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"chitty/internal/app/broker"
	"chitty/internal/app/chat"
	"chitty/internal/configs"
	"chitty/internal/pkg/auth/token"
	"chitty/internal/pkg/limiter"
)

func testDeps(maxConnections int) *AppDeps {
	return &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			TokenMaxAge: time.Hour,
		},
		Gate:    token.NewGate("test-secret", time.Hour),
		Gateway: chat.NewGateway(broker.NewMemBus(), maxConnections),
	}
}

func performJoin(t *testing.T, deps *AppDeps, target string) *httptest.ResponseRecorder {
	t.Helper()

	// Generous limiter so rate limiting never interferes.
	rl := limiter.NewIPRateLimiter(rate.Limit(1000), 1000)
	h := HandleWebSocket(websocket.Upgrader{}, rl, deps)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Status string `json:"status"`
		Error  struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	return body.Error.Reason
}

func TestJoinRejectedAtCapacity(t *testing.T) {
	deps := testDeps(1)
	require.True(t, deps.Gateway.TryAcquire())

	rec := performJoin(t, deps, "/ws?token=whatever")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "E_WEB_BUSY", decodeReason(t, rec))
	assert.Equal(t, int64(1), deps.Gateway.Active())
}

func TestJoinRejectedWithoutToken(t *testing.T) {
	deps := testDeps(4)

	rec := performJoin(t, deps, "/ws")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "E_WEB_AUTH_REQUIRED", decodeReason(t, rec))

	// The claimed slot must be returned on rejection.
	assert.Equal(t, int64(0), deps.Gateway.Active())
}

func TestJoinRejectedWithBadToken(t *testing.T) {
	deps := testDeps(4)

	rec := performJoin(t, deps, "/ws?token=garbage")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "E_WEB_FORBIDDEN", decodeReason(t, rec))
	assert.Equal(t, int64(0), deps.Gateway.Active())
}

func TestJoinRejectedWithExpiredToken(t *testing.T) {
	deps := testDeps(4)

	// A gate with a tiny window makes any real token expired by the time
	// it is checked.
	shortGate := token.NewGate("test-secret", time.Nanosecond)
	expired, err := shortGate.Issue("alice")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	deps.Gate = shortGate
	rec := performJoin(t, deps, "/ws?token="+expired)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "E_WEB_FORBIDDEN", decodeReason(t, rec))
}

func TestJoinRejectedWhenRateLimited(t *testing.T) {
	deps := testDeps(4)

	rl := limiter.NewIPRateLimiter(rate.Limit(0.001), 1)
	h := HandleWebSocket(websocket.Upgrader{}, rl, deps)

	first := httptest.NewRecorder()
	h(first, httptest.NewRequest(http.MethodGet, "/ws", nil))

	second := httptest.NewRecorder()
	h(second, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "E_WEB_RATELIMITED", decodeReason(t, second))
}

package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"chitty/internal/pkg/auth/token"
	"chitty/internal/pkg/errs"
	"chitty/internal/pkg/limiter"
	"chitty/internal/pkg/logx"
	"chitty/internal/pkg/resp"
)

// HandleWebSocket processes relay join requests. Every rejection happens
// before the upgrade, as a plain HTTP response: rate limit, capacity,
// then token checks in order. Once upgraded, the request blocks inside
// the gateway until the connection ends.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ReasonRateLimited))
			return
		}

		if !deps.Gateway.TryAcquire() {
			logx.Warn("WebSocket connection rejected: Relay at capacity.", "active", deps.Gateway.Active())
			resp.RespondError(w, r, errs.NewError(errs.ReasonBusy))
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			deps.Gateway.Release()
			logx.Warn("WebSocket connection rejected: Missing token.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ReasonAuthRequired))
			return
		}

		check := deps.Gate.Verify(tokenString)
		if check.Result != token.OK {
			deps.Gateway.Release()
			logx.Warn("WebSocket connection rejected: Token check failed.", "result", check.Result.String(), "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ReasonForbidden, "token check failed: "+check.Result.String()))
			return
		}

		name := check.Value
		if name == "" {
			deps.Gateway.Release()
			logx.Warn("WebSocket connection rejected: Token carries no user name.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ReasonBadRequest))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			deps.Gateway.Release()
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		deps.Gateway.Connect(r.Context(), conn, name, r.RemoteAddr)
	}
}

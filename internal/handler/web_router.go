package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"chitty/internal/pkg/limiter"
	"chitty/internal/pkg/logx"
	"chitty/internal/pkg/resp"
)

const (
	RegisterRate  = 0.05
	RegisterBurst = 2
	LoginRate     = 0.2
	LoginBurst    = 5
)

// WebRouter sets up the account web service's routing table:
// registration, login, name probing and relay discovery.
func WebRouter(deps *AppDeps) http.Handler {
	registerLimiter := limiter.NewIPRateLimiter(rate.Limit(RegisterRate), RegisterBurst)
	loginLimiter := limiter.NewIPRateLimiter(rate.Limit(LoginRate), LoginBurst)

	r := chi.NewRouter()

	r.Use(corsHandler(deps).Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "chitty web",
		})
	})

	r.Method(http.MethodPost, "/register", registerLimiter.Middleware(HandleRegister(deps)))
	r.Method(http.MethodPost, "/login", loginLimiter.Middleware(HandleLogin(deps)))
	r.Get("/names/{name}", HandleNameProbe(deps))
	r.Get("/meta", HandleMeta(deps))

	return r
}

package handler

import (
	"net/http"

	"chitty/internal/pkg/resp"
)

// HandleMeta tells clients where the relay lives, so they only need the
// web service's address to bootstrap.
func HandleMeta(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"chat": map[string]any{
				"host": deps.Config.ChatHost,
				"port": deps.Config.ChatPort,
			},
		})
	}
}

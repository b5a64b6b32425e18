package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitty/internal/configs"
)

func TestHandleMeta(t *testing.T) {
	deps := &AppDeps{
		Config: &configs.AppConfig{
			ChatHost: "chat.example.com",
			ChatPort: 7000,
		},
	}

	rec := httptest.NewRecorder()
	HandleMeta(deps)(rec, httptest.NewRequest(http.MethodGet, "/meta", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Chat struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		} `json:"chat"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "chat.example.com", body.Chat.Host)
	assert.Equal(t, 7000, body.Chat.Port)
}

package errs

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorKnownReason(t *testing.T) {
	e := NewError(ReasonNotFound)

	assert.Equal(t, ReasonNotFound, e.Reason)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.NotEmpty(t, e.Message)
}

func TestNewErrorMessageOverride(t *testing.T) {
	e := NewError(ReasonConflict, "name already taken")

	assert.Equal(t, "name already taken", e.Message)
	assert.Equal(t, http.StatusConflict, e.Status)
}

func TestNewErrorUnknownReasonDegrades(t *testing.T) {
	e := NewError("E_NO_SUCH_REASON")

	assert.Equal(t, ReasonInternal, e.Reason)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
}

func TestChatReasonsCarryOKStatus(t *testing.T) {
	// Relay-side reasons travel inside WebSocket payloads, never as HTTP
	// failures.
	for _, reason := range []string{
		ReasonMalformed,
		ReasonTypeInvalid,
		ReasonNotRegistered,
		ReasonTopicSystem,
	} {
		e := NewError(reason)
		assert.Equal(t, http.StatusOK, e.Status, reason)
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	envelope := Response(ReasonTopicSystem)

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "error", decoded["status"])
	errBody, ok := decoded["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ReasonTopicSystem, errBody["reason"])
	assert.NotEmpty(t, errBody["message"])
}

func TestResponseMapMatchesEnvelope(t *testing.T) {
	envelope := Response(ReasonNotRegistered)
	asMap := ResponseMap(ReasonNotRegistered)

	fromEnvelope, err := json.Marshal(envelope)
	require.NoError(t, err)
	fromMap, err := json.Marshal(asMap)
	require.NoError(t, err)

	assert.JSONEq(t, string(fromEnvelope), string(fromMap))
}

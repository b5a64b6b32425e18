package errs

import (
	"fmt"
	"net/http"

	"chitty/internal/pkg/logx"
)

// CustomError is the error type used across the relay and the account
// service. It carries the stable reason code, a client-facing message and
// the HTTP status to use when the error surfaces over plain HTTP.
type CustomError struct {
	Reason  string
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.Reason, e.Status, e.Message)
}

// NewError builds a *CustomError from a predefined reason code. An
// optional message overrides the default from the map. Unknown reasons
// degrade to ReasonInternal rather than failing.
func NewError(reason string, message ...string) *CustomError {
	templateErr, ok := errorMap[reason]

	if !ok {
		logx.Warn("unknown error reason requested", "reason", reason)
		templateErr = errorMap[ReasonInternal]
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if len(message) > 0 && message[0] != "" {
		customErr.Message = message[0]
	}

	return &customErr
}

// ErrorBody is the inner object of the wire error envelope.
type ErrorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Envelope is the structured error payload sent to clients:
// {"status":"error","error":{"reason":...,"message":...}}.
type Envelope struct {
	Status string    `json:"status"`
	Error  ErrorBody `json:"error"`
}

// Response builds the wire error envelope for a reason code. An optional
// message overrides the default.
func Response(reason string, message ...string) Envelope {
	e := NewError(reason, message...)
	return Envelope{
		Status: "error",
		Error: ErrorBody{
			Reason:  e.Reason,
			Message: e.Message,
		},
	}
}

// ResponseMap is Response rendered as a generic map, for handlers that
// return reply payloads as maps.
func ResponseMap(reason string, message ...string) map[string]any {
	e := NewError(reason, message...)
	return map[string]any{
		"status": "error",
		"error": map[string]any{
			"reason":  e.Reason,
			"message": e.Message,
		},
	}
}

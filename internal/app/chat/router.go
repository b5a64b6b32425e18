package chat

import (
	"context"

	"chitty/internal/app/user"
)

// RoutingError reports a message whose type tag is missing or unknown.
type RoutingError struct {
	msg string
}

func (e *RoutingError) Error() string { return e.msg }

// FormatError reports a message missing required fields for its type.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return e.msg }

// HandlerFunc implements one message type's behavior. It receives the
// authenticated user and the message's remaining fields, and returns an
// optional reply payload delivered only to the originating connection.
// Domain failures come back as error-envelope payloads, not errors.
type HandlerFunc func(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error)

// fieldSubstitutions renames wire-format field names to the internal
// names handlers expect.
var fieldSubstitutions = map[string]string{
	"replyingTo": "replying_to",
}

// Router validates, normalizes and dispatches decoded inbound messages.
// The dispatch table is fixed at construction; adding a message type
// means one table row, one field-table row and one handler.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter builds the dispatch table over the handler set.
func NewRouter(h *Handlers) *Router {
	return &Router{
		handlers: map[string]HandlerFunc{
			TypeSubscribe:     h.Subscribe,
			TypeMessage:       h.PostMessage,
			TypeReply:         h.PostReply,
			TypeDirectMessage: h.DirectMessage,
		},
	}
}

// Route dispatches msg to the handler registered for its type tag.
// The tag is removed from the field set before validation. Unknown types
// fail with *RoutingError, incomplete field sets with *FormatError; the
// handler's reply is propagated unchanged.
func (rt *Router) Route(ctx context.Context, u *user.User, msg map[string]any) (map[string]any, error) {
	msgType, _ := msg["type"].(string)
	delete(msg, "type")

	handler, known := rt.handlers[msgType]
	if msgType == "" || !known {
		return nil, &RoutingError{msg: "unknown message type"}
	}

	if !validateMessage(msgType, msg) {
		return nil, &FormatError{msg: "invalid message format"}
	}

	normalizeFields(msg)

	return handler(ctx, u, msg)
}

// validateMessage reports whether the field set is a superset of the
// required fields for the type. Extra fields are tolerated.
func validateMessage(msgType string, msg map[string]any) bool {
	for _, field := range messageFields[msgType] {
		if _, ok := msg[field]; !ok {
			return false
		}
	}
	return true
}

// normalizeFields rewrites wire field names to internal ones in place.
func normalizeFields(msg map[string]any) {
	for wire, internal := range fieldSubstitutions {
		if v, ok := msg[wire]; ok {
			msg[internal] = v
			delete(msg, wire)
		}
	}
}

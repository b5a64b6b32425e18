package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"chitty/internal/app/broker"
	"chitty/internal/app/user"
	"chitty/internal/pkg/errs"
	"chitty/internal/pkg/logx"
)

// Handlers implements the behavior behind each message type. Domain
// failures (unknown recipient, writing to a system topic) are returned as
// structured error payloads so they reach the client without tearing the
// connection down; only broker and serialization faults surface as Go
// errors.
type Handlers struct {
	registry *Registry
	bus      broker.Bus
	logger   zerolog.Logger
}

// NewHandlers wires the handler set to its registry and bus.
func NewHandlers(registry *Registry, bus broker.Bus) *Handlers {
	return &Handlers{
		registry: registry,
		bus:      bus,
		logger:   logx.Logger().With().Str("component", "handlers").Logger(),
	}
}

// stringField extracts a string-valued field, failing with *FormatError
// when the value has the wrong type. Presence was already validated by
// the router.
func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key].(string)
	if !ok || v == "" {
		return "", &FormatError{msg: fmt.Sprintf("field %q must be a non-empty string", key)}
	}
	return v, nil
}

// Subscribe adds a topic to the user's subscription set. Subscribing is
// idempotent; the topic-created event fires only when the topic was
// unknown process-wide. The reply confirms with the updated topic list.
func (h *Handlers) Subscribe(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
	topic, err := stringField(fields, "value")
	if err != nil {
		return nil, err
	}

	if !u.Subscribed(topic) {
		if err := u.Feed().Subscribe(ctx, topic); err != nil {
			return nil, err
		}
		u.AddTopic(topic)

		if topic != u.PrivateTopic() {
			if err := h.bus.TrackUserTopic(ctx, u.Name, topic); err != nil {
				h.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to track user topic")
			}
		}
	}

	// The private topic is never announced; its name is the user's DM
	// address.
	if topic != u.PrivateTopic() {
		created, err := h.bus.AddTopic(ctx, topic)
		if err != nil {
			return nil, err
		}
		if created {
			if err := emitTopicCreated(ctx, h.bus, topic); err != nil {
				h.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to emit topic-created event")
			}
		}
	}

	return u.ToMap(true), nil
}

// PostMessage publishes a chat message to a topic, subscribing the sender
// implicitly. Posts to system topics and posts from senders absent from
// the registry are rejected with error payloads.
func (h *Handlers) PostMessage(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
	to, err := stringField(fields, "to")
	if err != nil {
		return nil, err
	}
	text, err := stringField(fields, "value")
	if err != nil {
		return nil, err
	}

	return h.post(ctx, u, to, text, nil)
}

// post is the shared publish path for msg and reply.
func (h *Handlers) post(ctx context.Context, u *user.User, to, text string, extra map[string]any) (map[string]any, error) {
	if IsSystemTopic(to) {
		return errs.ResponseMap(errs.ReasonTopicSystem), nil
	}

	if _, err := h.registry.Get("", u.Name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errs.ResponseMap(errs.ReasonNotRegistered), nil
		}
		return nil, err
	}

	if !u.Subscribed(to) {
		if err := u.Feed().Subscribe(ctx, to); err != nil {
			return nil, err
		}
		u.AddTopic(to)

		if to != u.PrivateTopic() {
			if err := h.bus.TrackUserTopic(ctx, u.Name, to); err != nil {
				h.logger.Warn().Err(err).Str("topic", to).Msg("Failed to track user topic")
			}
		}
	}

	payload := map[string]any{"type": TypeMessage}
	for k, v := range extra {
		payload[k] = v
	}

	msg := NewMessage(u.Snapshot(), to, text, payload)
	if err := msg.Publish(ctx, h.bus); err != nil {
		return nil, err
	}

	if to != u.PrivateTopic() {
		created, err := h.bus.AddTopic(ctx, to)
		if err != nil {
			return nil, err
		}
		if created {
			if err := emitTopicCreated(ctx, h.bus, to); err != nil {
				h.logger.Warn().Err(err).Str("topic", to).Msg("Failed to emit topic-created event")
			}
		}
	}

	return nil, nil
}

// PostReply posts a message carrying a reply reference, then notifies the
// original author on their private topic. Errors from the underlying post
// short-circuit unchanged; a vanished author just loses the notification.
func (h *Handlers) PostReply(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
	to, err := stringField(fields, "to")
	if err != nil {
		return nil, err
	}
	text, err := stringField(fields, "value")
	if err != nil {
		return nil, err
	}
	ref, ok := fields["replying_to"].(map[string]any)
	if !ok {
		return nil, &FormatError{msg: "field \"replyingTo\" must be an object"}
	}

	reply, err := h.post(ctx, u, to, text, map[string]any{"replying_to": ref})
	if err != nil || reply != nil {
		return reply, err
	}

	target := h.resolveAuthorTopic(ref)
	if target == "" {
		h.logger.Debug().Str("topic", to).Msg("Reply author not connected, skipping notification")
		return nil, nil
	}

	notif := NewMessage(
		systemSender,
		target,
		fmt.Sprintf("%s replied to your message in %s", u.Name, to),
		map[string]any{
			"type":       TypeEvent,
			"topic_name": to,
		},
	)
	if err := notif.Publish(ctx, h.bus); err != nil {
		h.logger.Warn().Err(err).Str("topic", target).Msg("Failed to publish reply notification")
	}

	return nil, nil
}

// resolveAuthorTopic finds the private topic of the referenced message
// author: directly from the key when present, otherwise through a
// registry name lookup. An empty result means the author is offline.
func (h *Handlers) resolveAuthorTopic(ref map[string]any) string {
	if key, ok := ref["key"].(string); ok && key != "" {
		return key
	}

	name, ok := ref["name"].(string)
	if !ok || name == "" {
		return ""
	}

	author, err := h.registry.Get("", name)
	if err != nil {
		return ""
	}
	return author.PrivateTopic()
}

// DirectMessage delivers a message to another connected user's private
// topic. An unknown recipient is a data result, answered with a
// not-registered payload and no publish.
func (h *Handlers) DirectMessage(ctx context.Context, u *user.User, fields map[string]any) (map[string]any, error) {
	to, err := stringField(fields, "to")
	if err != nil {
		return nil, err
	}
	text, err := stringField(fields, "value")
	if err != nil {
		return nil, err
	}

	recipient, lookupErr := h.registry.Get("", to)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			return errs.ResponseMap(errs.ReasonNotRegistered, fmt.Sprintf("no connected user named %q", to)), nil
		}
		return nil, lookupErr
	}

	msg := NewMessage(u.Snapshot(), recipient.PrivateTopic(), text, map[string]any{"type": TypeDirectMessage})
	if err := msg.Publish(ctx, h.bus); err != nil {
		return nil, err
	}

	return nil, nil
}

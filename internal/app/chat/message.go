/*
Package chat contains the connection and session core of the relay: the
message model, the validation-and-dispatch router, the handler set, the
connected-user registry, and the per-connection gateway.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chitty/internal/app/broker"
)

// Message type tags as they appear on the wire.
const (
	TypeSubscribe     = "sub"
	TypeDirectMessage = "dm"
	TypeMessage       = "msg"
	TypeReply         = "reply"
	TypeEvent         = "event"
)

// messageFields maps each routable message type to the fields it
// requires, using wire-format field names. Validation happens before
// field normalization.
var messageFields = map[string][]string{
	TypeSubscribe:     {"value"},
	TypeDirectMessage: {"to", "value"},
	TypeMessage:       {"to", "value"},
	TypeReply:         {"to", "value", "replyingTo"},
}

// Message is one unit of chat traffic: a destination topic and a payload.
// It is immutable once constructed. The wire representation is computed
// on first use and cached; a Message is published or sent at most from
// two places, so the cache is guarded against a concurrent first access.
type Message struct {
	Topic   string
	Payload map[string]any

	once sync.Once
	raw  []byte
	err  error
}

// NewMessage builds a chat message addressed to topic. The sender
// snapshot, body text, timestamp and topic form the base payload; any
// extra entries (type tag, reply references) are merged in.
func NewMessage(from map[string]any, topic, text string, extra map[string]any) *Message {
	payload := map[string]any{
		"from":    from,
		"message": text,
		"date":    float64(time.Now().UnixMilli()) / 1000,
		"topic":   topic,
	}
	for k, v := range extra {
		payload[k] = v
	}

	return &Message{Topic: topic, Payload: payload}
}

// Bytes returns the serialized payload, computing it once.
func (m *Message) Bytes() ([]byte, error) {
	m.once.Do(func() {
		m.raw, m.err = json.Marshal(m.Payload)
	})
	return m.raw, m.err
}

// Publish sends the message to its topic on the bus.
func (m *Message) Publish(ctx context.Context, bus broker.Bus) error {
	raw, err := m.Bytes()
	if err != nil {
		return err
	}
	return bus.Publish(ctx, m.Topic, raw)
}

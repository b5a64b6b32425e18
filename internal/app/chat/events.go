package chat

import (
	"context"

	"chitty/internal/app/broker"
)

// systemSender is the identity stamped on relay-originated messages.
var systemSender = map[string]any{
	"name": "server",
	"key":  "server",
}

// emitTopicCreated broadcasts a topic-created event on the system events
// topic. Callers decide newness via Bus.AddTopic before emitting.
func emitTopicCreated(ctx context.Context, bus broker.Bus, topic string) error {
	msg := NewMessage(
		systemSender,
		EventsTopic,
		"New topic open: "+topic,
		map[string]any{
			"type":       TypeEvent,
			"topic_name": topic,
		},
	)
	return msg.Publish(ctx, bus)
}

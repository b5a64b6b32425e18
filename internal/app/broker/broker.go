/*
Package broker abstracts the pub/sub substrate the relay runs on.

The Bus is the process-wide side: publishing, topic bookkeeping, and
opening per-user feeds. A Feed is one user's merged subscription stream,
owned by that user's connection for its lifetime.
*/
package broker

import "context"

// Message is one item delivered on a feed: the concrete topic it arrived
// on and the serialized payload.
type Message struct {
	Topic   string
	Payload []byte
}

// Bus is the process-wide broker handle. Implementations must be safe for
// concurrent use from all connections.
type Bus interface {
	// Publish sends a serialized payload to a topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// AddTopic records a topic in the shared known-topics set. It reports
	// whether the topic was newly added.
	AddTopic(ctx context.Context, topic string) (bool, error)

	// TrackUserTopic records a topic in a user's subscribed-topics set.
	TrackUserTopic(ctx context.Context, userKey, topic string) error

	// UserTopics returns the recorded subscribed-topics set for a user.
	UserTopics(ctx context.Context, userKey string) ([]string, error)

	// Feed opens a subscription stream covering the given topics.
	Feed(ctx context.Context, topics ...string) (Feed, error)
}

// Feed is a single consumer's merged incoming stream. Subscribe and
// PSubscribe grow the covered set; Messages yields until Close.
type Feed interface {
	// Subscribe adds concrete topics to the feed.
	Subscribe(ctx context.Context, topics ...string) error

	// PSubscribe adds topic patterns to the feed.
	PSubscribe(ctx context.Context, patterns ...string) error

	// Messages returns the merged delivery channel. The channel is closed
	// when the feed is closed.
	Messages() <-chan Message

	// Close tears down the subscriptions and closes the message channel.
	Close() error
}

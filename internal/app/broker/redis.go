package broker

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	// keyKnownTopics is the Redis set holding every topic name seen so far.
	keyKnownTopics = "sys:topics"

	// keyUserTopicsPrefix prefixes the per-user subscribed-topics sets.
	keyUserTopicsPrefix = "sys:topics:"

	// feedBuffer is the per-feed delivery channel capacity.
	feedBuffer = 256
)

// RedisBus implements Bus on a Redis pub/sub substrate. Topic bookkeeping
// lives in Redis sets so it survives relay restarts.
type RedisBus struct {
	rdb *redis.Client
}

// NewRedisBus wraps an existing Redis client.
func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

// Publish sends the payload to a Redis channel.
func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.rdb.Publish(ctx, topic, payload).Err()
}

// AddTopic records the topic in the known-topics set, reporting whether
// it was new.
func (b *RedisBus) AddTopic(ctx context.Context, topic string) (bool, error) {
	added, err := b.rdb.SAdd(ctx, keyKnownTopics, topic).Result()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

// TrackUserTopic records the topic in the user's subscribed set.
func (b *RedisBus) TrackUserTopic(ctx context.Context, userKey, topic string) error {
	return b.rdb.SAdd(ctx, keyUserTopicsPrefix+userKey, topic).Err()
}

// UserTopics returns the user's recorded subscribed set.
func (b *RedisBus) UserTopics(ctx context.Context, userKey string) ([]string, error) {
	return b.rdb.SMembers(ctx, keyUserTopicsPrefix+userKey).Result()
}

// Feed opens a Redis pub/sub subscription for the given topics and starts
// the pump translating deliveries into broker messages.
func (b *RedisBus) Feed(ctx context.Context, topics ...string) (Feed, error) {
	ps := b.rdb.Subscribe(ctx, topics...)

	// Force the subscription onto the wire before the caller relies on it.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	f := &redisFeed{
		ps:  ps,
		out: make(chan Message, feedBuffer),
	}

	go f.pump()

	return f, nil
}

// redisFeed adapts one redis.PubSub to the Feed interface. Pattern and
// plain subscriptions share the same delivery channel.
type redisFeed struct {
	ps  *redis.PubSub
	out chan Message
}

func (f *redisFeed) Subscribe(ctx context.Context, topics ...string) error {
	return f.ps.Subscribe(ctx, topics...)
}

func (f *redisFeed) PSubscribe(ctx context.Context, patterns ...string) error {
	return f.ps.PSubscribe(ctx, patterns...)
}

func (f *redisFeed) Messages() <-chan Message {
	return f.out
}

// pump forwards deliveries until the underlying pub/sub closes.
func (f *redisFeed) pump() {
	defer close(f.out)

	for msg := range f.ps.Channel() {
		f.out <- Message{
			Topic:   msg.Channel,
			Payload: []byte(msg.Payload),
		}
	}
}

func (f *redisFeed) Close() error {
	return f.ps.Close()
}

package broker

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemBus is an in-process Bus used by tests and single-node development
// runs. Fan-out is at-most-once per feed: a feed whose buffer is full
// misses the message rather than blocking the publisher.
type MemBus struct {
	mu         sync.RWMutex
	feeds      map[*memFeed]struct{}
	topics     map[string]struct{}
	userTopics map[string]map[string]struct{}
}

// NewMemBus creates an empty in-memory bus.
func NewMemBus() *MemBus {
	return &MemBus{
		feeds:      make(map[*memFeed]struct{}),
		topics:     make(map[string]struct{}),
		userTopics: make(map[string]map[string]struct{}),
	}
}

// Publish fans the payload out to every feed covering the topic.
func (b *MemBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msg := Message{Topic: topic, Payload: payload}
	for f := range b.feeds {
		if f.covers(topic) {
			select {
			case f.ch <- msg:
			default:
			}
		}
	}
	return nil
}

// AddTopic records the topic, reporting whether it was new.
func (b *MemBus) AddTopic(ctx context.Context, topic string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.topics[topic]; ok {
		return false, nil
	}
	b.topics[topic] = struct{}{}
	return true, nil
}

// TrackUserTopic records the topic in the user's subscribed set.
func (b *MemBus) TrackUserTopic(ctx context.Context, userKey, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.userTopics[userKey]
	if !ok {
		set = make(map[string]struct{})
		b.userTopics[userKey] = set
	}
	set[topic] = struct{}{}
	return nil
}

// UserTopics returns the user's recorded subscribed set, sorted for
// deterministic output.
func (b *MemBus) UserTopics(ctx context.Context, userKey string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	set := b.userTopics[userKey]
	topics := make([]string, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics, nil
}

// Feed opens an in-memory feed covering the given topics.
func (b *MemBus) Feed(ctx context.Context, topics ...string) (Feed, error) {
	f := &memFeed{
		bus:    b,
		topics: make(map[string]struct{}, len(topics)),
		ch:     make(chan Message, feedBuffer),
	}
	for _, t := range topics {
		f.topics[t] = struct{}{}
	}

	b.mu.Lock()
	b.feeds[f] = struct{}{}
	b.mu.Unlock()

	return f, nil
}

// memFeed is one consumer's stream on a MemBus. Patterns support only the
// trailing-star form ("sys:*"), which is all the relay uses.
type memFeed struct {
	bus *MemBus

	mu       sync.Mutex
	topics   map[string]struct{}
	prefixes []string
	closed   bool

	ch chan Message
}

func (f *memFeed) covers(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if _, ok := f.topics[topic]; ok {
		return true
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(topic, p) {
			return true
		}
	}
	return false
}

func (f *memFeed) Subscribe(ctx context.Context, topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range topics {
		f.topics[t] = struct{}{}
	}
	return nil
}

func (f *memFeed) PSubscribe(ctx context.Context, patterns ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range patterns {
		f.prefixes = append(f.prefixes, strings.TrimSuffix(p, "*"))
	}
	return nil
}

func (f *memFeed) Messages() <-chan Message {
	return f.ch
}

func (f *memFeed) Close() error {
	f.bus.mu.Lock()
	delete(f.bus.feeds, f)
	f.bus.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}

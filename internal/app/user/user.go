/*
Package user defines the identity of a connected chat participant.

A User exists only while its connection is open: it is created at
successful registration and destroyed at disconnect.
*/
package user

import (
	"sort"

	"chitty/internal/app/broker"
)

// User represents one connected participant.
//
// Name, Key, SessionID and RemoteAddr are fixed at construction. The
// topic set is mutated only by the connection's own inbound task; other
// connections reach a User solely through the registry and read only the
// immutable fields, so the set carries no lock.
type User struct {
	// Name is the display handle, unique among currently connected users.
	Name string `json:"name"`

	// Key is the stable identity token issued at registration. It doubles
	// as the name of the user's private topic.
	Key string `json:"key"`

	// SessionID identifies the transport connection this user arrived on.
	SessionID string `json:"-"`

	// RemoteAddr is the peer address, kept for logging.
	RemoteAddr string `json:"-"`

	topics map[string]struct{}
	feed   broker.Feed
}

// New constructs a User owning the given feed, subscribed to the initial
// topics plus their own private topic.
func New(name, sessionID, key string, feed broker.Feed, topics ...string) *User {
	u := &User{
		Name:      name,
		SessionID: sessionID,
		Key:       key,
		feed:      feed,
		topics:    make(map[string]struct{}, len(topics)+1),
	}

	for _, t := range topics {
		u.topics[t] = struct{}{}
	}
	u.topics[u.PrivateTopic()] = struct{}{}

	return u
}

// Feed returns the pub/sub stream owned by this user for the lifetime of
// its connection.
func (u *User) Feed() broker.Feed {
	return u.feed
}

// PrivateTopic returns the name of the user's direct-message topic.
func (u *User) PrivateTopic() string {
	return u.Key
}

// Subscribed reports whether the user's topic set contains topic.
func (u *User) Subscribed(topic string) bool {
	_, ok := u.topics[topic]
	return ok
}

// AddTopic records topic in the user's subscription set.
func (u *User) AddTopic(topic string) {
	u.topics[topic] = struct{}{}
}

// Topics returns the subscription set as a sorted slice.
func (u *User) Topics() []string {
	topics := make([]string, 0, len(u.topics))
	for t := range u.topics {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Snapshot returns the serializable identity carried inside message
// payloads.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"name": u.Name,
		"key":  u.Key,
	}
}

// ToMap serializes the user, optionally including the topic list.
func (u *User) ToMap(withTopics bool) map[string]any {
	data := u.Snapshot()
	if withTopics {
		data["topics"] = u.Topics()
	}
	return data
}

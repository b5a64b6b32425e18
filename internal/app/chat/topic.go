package chat

import "strings"

const (
	// SystemTopicPrefix marks topics reserved for relay-originated events.
	// Ordinary users cannot post to them.
	SystemTopicPrefix = "sys:"

	// SystemTopicPattern is the pattern subscription every connected user
	// holds so system broadcasts reach everyone.
	SystemTopicPattern = "sys:*"

	// EventsTopic carries topic-created broadcasts.
	EventsTopic = "sys:events"
)

// DefaultTopics are the topics every user is subscribed to on
// registration, in addition to their private topic.
var DefaultTopics = []string{"general"}

// IsSystemTopic reports whether the topic name is write-protected.
func IsSystemTopic(name string) bool {
	return strings.HasPrefix(name, SystemTopicPrefix)
}

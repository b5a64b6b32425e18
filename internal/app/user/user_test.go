package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserDefaults(t *testing.T) {
	u := New("alice", "sess-1", "key-1", nil, "general")

	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, "sess-1", u.SessionID)
	assert.Equal(t, "key-1", u.Key)
	assert.Equal(t, "key-1", u.PrivateTopic())

	assert.True(t, u.Subscribed("general"))
	assert.True(t, u.Subscribed("key-1"))
	assert.False(t, u.Subscribed("random"))
}

func TestAddTopic(t *testing.T) {
	u := New("alice", "sess-1", "key-1", nil)

	u.AddTopic("random")
	assert.True(t, u.Subscribed("random"))

	assert.Equal(t, []string{"key-1", "random"}, u.Topics())
}

func TestSnapshotOmitsSession(t *testing.T) {
	u := New("alice", "sess-1", "key-1", nil)

	snap := u.Snapshot()
	assert.Equal(t, map[string]any{"name": "alice", "key": "key-1"}, snap)
}

func TestToMap(t *testing.T) {
	u := New("alice", "sess-1", "key-1", nil, "general")

	bare := u.ToMap(false)
	assert.NotContains(t, bare, "topics")

	full := u.ToMap(true)
	assert.ElementsMatch(t, []string{"general", "key-1"}, full["topics"])
}

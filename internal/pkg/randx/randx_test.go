package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserKey(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		key, err := UserKey()
		require.NoError(t, err)

		assert.Len(t, key, UserKeyLength)
		for _, c := range key {
			assert.True(t, strings.ContainsRune(Base62Chars, c), "unexpected character %q", c)
		}

		_, dup := seen[key]
		assert.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
}

func TestSessionID(t *testing.T) {
	id := SessionID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	assert.NotEqual(t, id, SessionID())
}

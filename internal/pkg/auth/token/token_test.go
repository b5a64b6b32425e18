package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	g := NewGate("test-secret", 24*time.Hour)

	tokenString, err := g.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	check := g.Verify(tokenString)
	assert.Equal(t, OK, check.Result)
	assert.Equal(t, "alice", check.Value)
}

func TestVerifyExpired(t *testing.T) {
	g := NewGate("test-secret", time.Hour)

	issued := time.Now().Add(-2 * time.Hour)
	g.now = func() time.Time { return issued }

	tokenString, err := g.Issue("alice")
	require.NoError(t, err)

	g.now = time.Now

	check := g.Verify(tokenString)
	assert.Equal(t, Expired, check.Result)
	assert.Empty(t, check.Value)
}

func TestVerifyWithinMaxAge(t *testing.T) {
	g := NewGate("test-secret", time.Hour)

	issued := time.Now().Add(-30 * time.Minute)
	g.now = func() time.Time { return issued }

	tokenString, err := g.Issue("bob")
	require.NoError(t, err)

	g.now = time.Now

	check := g.Verify(tokenString)
	assert.Equal(t, OK, check.Result)
	assert.Equal(t, "bob", check.Value)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewGate("secret-one", time.Hour)
	verifier := NewGate("secret-two", time.Hour)

	tokenString, err := issuer.Issue("alice")
	require.NoError(t, err)

	check := verifier.Verify(tokenString)
	assert.Equal(t, BadSignature, check.Result)
	assert.Empty(t, check.Value)
}

func TestVerifyGarbage(t *testing.T) {
	g := NewGate("test-secret", time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		check := g.Verify(input)
		assert.Equal(t, BadSignature, check.Result, "input %q", input)
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "bad signature", BadSignature.String())
}

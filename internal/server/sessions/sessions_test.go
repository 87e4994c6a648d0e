package sessions

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ConnectReturnsStableSecret(t *testing.T) {
	r := NewRegistry(32)

	s1 := r.Connect("a", "alice")
	s2 := r.Connect("b", "bob")
	assert.Equal(t, s1, s2)

	raw, err := hex.DecodeString(s1)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, 2, r.Count())
}

func TestRegistry_SecretsDifferAcrossRegistries(t *testing.T) {
	assert.NotEqual(t, NewRegistry(16).Connect("a", "x"), NewRegistry(16).Connect("a", "x"))
}

func TestRegistry_LookupAndDisconnect(t *testing.T) {
	r := NewRegistry(8)
	r.Connect("a", "alice")
	r.Connect("a", "alice2")

	s, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, Session{SenderID: "a", Author: "alice2"}, s)

	assert.True(t, r.Disconnect("a"))
	assert.False(t, r.Disconnect("a"))

	_, ok = r.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

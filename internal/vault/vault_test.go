package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("vault:secret/ecoponto/admin#token")
	require.NoError(t, err)
	assert.Equal(t, Ref{Path: "secret/ecoponto/admin", Key: "token"}, ref)

	ref, err = ParseRef("vault:/secret/app/#pw")
	require.NoError(t, err)
	assert.Equal(t, "secret/app", ref.Path)

	for _, bad := range []string{
		"secret/app#pw",     // no prefix
		"vault:secret/app",  // no key
		"vault:secret/app#", // empty key
		"vault:secret#pw",   // no path under the mount
		"vault:#pw",         // nothing
	} {
		_, err := ParseRef(bad)
		assert.True(t, errors.Is(err, ErrBadRef), "ParseRef(%q) = %v", bad, err)
	}
}

func TestIsRef(t *testing.T) {
	assert.True(t, IsRef("vault:a/b#c"))
	assert.False(t, IsRef("plain"))
	assert.False(t, IsRef(""))
}

func TestResolvePassesPlainValues(t *testing.T) {
	var c *Client // never dereferenced for plain values
	got, err := c.Resolve(context.Background(), "plain-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", got)
}

func TestSplitMount(t *testing.T) {
	m, r := splitMount("secret/app/db")
	assert.Equal(t, "secret", m)
	assert.Equal(t, "app/db", r)

	m, r = splitMount("secret")
	assert.Equal(t, "secret", m)
	assert.Empty(t, r)
}

func TestGetKVRejectsEmpty(t *testing.T) {
	c := &Client{cache: map[string]cached{}}
	_, err := c.GetKV(context.Background(), "", "k", 0)
	assert.Error(t, err)
}

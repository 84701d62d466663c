package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken_Present(t *testing.T) {
	token, ok := Token("rollcall://auth/callback?token=abc123")

	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestToken_HTTPCallbackURL(t *testing.T) {
	token, ok := Token("http://127.0.0.1:8750/auth/callback?state=xyz&token=tok-1")

	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestToken_Missing(t *testing.T) {
	_, ok := Token("rollcall://auth/callback?state=xyz")

	assert.False(t, ok)
}

func TestToken_EmptyParameter(t *testing.T) {
	_, ok := Token("rollcall://auth/callback?token=")

	assert.False(t, ok)
}

func TestToken_Unparsable(t *testing.T) {
	_, ok := Token("://not-a-url")

	assert.False(t, ok)
}

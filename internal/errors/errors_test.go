package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_StructuredErrors(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ValidationError("identity is required")))
	assert.Equal(t, KindAuth, KindOf(AuthError("invalid credentials", nil)))
	assert.Equal(t, KindSessionExpired, KindOf(SessionExpiredError()))
	assert.Equal(t, KindFetch, KindOf(FetchError("server unavailable", nil)))
	assert.Equal(t, KindStorage, KindOf(StorageError("redis write failed", nil)))
}

func TestKindOf_WrappedError(t *testing.T) {
	inner := FetchError("server unavailable", nil)
	wrapped := fmt.Errorf("fetch attendance: %w", inner)

	assert.Equal(t, KindFetch, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindFetch))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(stderrors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := AuthError("login failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "login failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "invalid credentials", UserMessage(AuthError("invalid credentials", nil)))
	assert.Equal(t, "invalid credentials", UserMessage(fmt.Errorf("login: %w", AuthError("invalid credentials", nil))))
	assert.Equal(t, "something went wrong, please try again", UserMessage(stderrors.New("boom")))
}

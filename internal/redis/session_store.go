package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/campuskit/rollcall/internal/errors"
)

const (
	keyToken     = "rollcall:session:token"
	keyIdentity  = "rollcall:session:identity"
	keyUpdatedAt = "rollcall:session:updated_at"
)

// SessionStore persists the session token and last-used identity. It is the
// only component that touches the key-value collaborator; failures surface
// as storage errors, which the controller treats as non-fatal.
type SessionStore struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

func NewSessionStore(client *Client, clock clockwork.Clock) *SessionStore {
	return &SessionStore{rdb: client.Underlying(), clock: clock}
}

// GetToken reads the persisted session token. A missing slot reads as "".
func (s *SessionStore) GetToken(ctx context.Context) (string, error) {
	return s.get(ctx, keyToken)
}

// SetToken persists the session token and stamps the write time.
func (s *SessionStore) SetToken(ctx context.Context, token string) error {
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, keyToken, token, 0)
	pipe.Set(ctx, keyUpdatedAt, s.nowStamp(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.StorageError("failed to persist session token", err)
	}
	return nil
}

// ClearToken removes the persisted token, leaving the identity slot intact
// so the next login can pre-fill it.
func (s *SessionStore) ClearToken(ctx context.Context) error {
	if err := s.rdb.Del(ctx, keyToken).Err(); err != nil {
		return apperrors.StorageError("failed to clear session token", err)
	}
	return nil
}

// GetIdentity reads the last-used identity. A missing slot reads as "".
func (s *SessionStore) GetIdentity(ctx context.Context) (string, error) {
	return s.get(ctx, keyIdentity)
}

// SetIdentity persists the last-used identity.
func (s *SessionStore) SetIdentity(ctx context.Context, identity string) error {
	if err := s.rdb.Set(ctx, keyIdentity, identity, 0).Err(); err != nil {
		return apperrors.StorageError("failed to persist identity", err)
	}
	return nil
}

// Clear removes both slots. No transactionality is assumed across them.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, keyToken, keyIdentity, keyUpdatedAt).Err(); err != nil {
		return apperrors.StorageError("failed to clear session", err)
	}
	return nil
}

func (s *SessionStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.StorageError("failed to read session slot", err)
	}
	return value, nil
}

func (s *SessionStore) nowStamp() string {
	return strconv.FormatInt(s.clock.Now().UnixMilli(), 10)
}

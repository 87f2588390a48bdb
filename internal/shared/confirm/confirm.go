package confirm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store issues one-shot confirmation tokens for destructive actions. The
// first command returns requires_confirmation plus a token; the caller
// re-issues the command with the token to proceed. Tokens are bound to the
// (owner, action, target) triple and expire quickly.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: 2 * time.Minute}
}

func key(ownerID, action, targetID, token string) string {
	return fmt.Sprintf("confirm:%s:%s:%s:%s", ownerID, action, targetID, token)
}

// Issue creates a token for the given action and target.
func (s *Store) Issue(ctx context.Context, ownerID, action, targetID string) (string, error) {
	token := uuid.New().String()
	err := s.rdb.Set(ctx, key(ownerID, action, targetID, token), "1", s.ttl).Err()
	if err != nil {
		return "", err
	}
	return token, nil
}

// Consume validates and burns a token. A token is single-use: a second
// consume with the same token fails.
func (s *Store) Consume(ctx context.Context, ownerID, action, targetID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	deleted, err := s.rdb.Del(ctx, key(ownerID, action, targetID, token)).Result()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

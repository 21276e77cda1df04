package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore guards refresh jobs shared by every instance.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func refreshLockKey(name string) string {
	return fmt.Sprintf("lock:refresh:%s", name)
}

// AcquireRefreshLock attempts to take the named refresh lock for ttl.
// On success it returns the token that must be presented to release it.
func (s *LockStore) AcquireRefreshLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, refreshLockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseRefreshLock releases the named lock if token still owns it. A lock
// that expired and was taken by another instance is left alone.
func (s *LockStore) ReleaseRefreshLock(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, s.client, []string{refreshLockKey(name)}, token).Err()
}

package submission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	dErrors "kycportal/pkg/domain-errors"
)

// MemoryGuard holds submission locks in process memory. It is enough for a
// single instance; deployments with several instances use RedisGuard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]time.Time), now: time.Now}
}

// Acquire takes the lock for key until released or ttl elapses. A held lock
// reports CodeConflict. The returned release func is safe to call twice.
func (g *MemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if until, ok := g.held[key]; ok && now.Before(until) {
		return nil, errInFlight
	}
	until := now.Add(ttl)
	g.held[key] = until
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.held[key] == until {
				delete(g.held, key)
			}
		})
	}, nil
}

const guardKeyPrefix = "onboarding:submit:"

// releaseScript deletes the lock only while it still carries our token, so an
// expired holder never frees a lock taken over by another instance.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard holds submission locks in Redis with SET NX so that a session
// submits at most once across instances.
type RedisGuard struct {
	client redis.UniversalClient
}

func NewRedisGuard(client redis.UniversalClient) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, guardKeyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "submission lock unavailable")
	}
	if !ok {
		return nil, errInFlight
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may be done by now.
			_ = releaseScript.Run(context.WithoutCancel(ctx), g.client, []string{guardKeyPrefix + key}, token).Err()
		})
	}, nil
}

var errInFlight = dErrors.New(dErrors.CodeConflict, "a submission for this session is already in progress")

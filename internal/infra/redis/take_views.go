package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizcraft-service/internal/domain"
)

// ViewLoader builds a taker view from the durable store (the hosting service).
type ViewLoader interface {
	LoadTakeView(ctx context.Context, sessionID string) (domain.TakeView, error)
}

// TakeViews caches the sanitized taker view of a session in Redis as JSON:
// SET session:view:{sessionID} {json} EX ttl. Snapshots are immutable; Stop
// calls Forget so stopped sessions vanish before the TTL does. Misses and
// errors fall through to the loader under singleflight.
type TakeViews struct {
	client *redis.Client
	loader ViewLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTakeViews(client *redis.Client, loader ViewLoader, ttl time.Duration) *TakeViews {
	return &TakeViews{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TakeViews) GetView(ctx context.Context, sessionID string) (domain.TakeView, error) {
	key := r.key(sessionID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var view domain.TakeView
		if err := json.Unmarshal(raw, &view); err == nil {
			return view, nil
		}
	}

	result, err, _ := r.sf.Do(sessionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var view domain.TakeView
			if err := json.Unmarshal(raw, &view); err == nil {
				return view, nil
			}
		}

		view, err := r.loader.LoadTakeView(ctx, sessionID)
		if err != nil {
			return domain.TakeView{}, err
		}

		if raw, err := json.Marshal(view); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return view, nil
	})
	if err != nil {
		return domain.TakeView{}, err
	}
	return result.(domain.TakeView), nil
}

// Forget drops the cached view, used when a session is stopped.
func (r *TakeViews) Forget(ctx context.Context, sessionID string) {
	_ = r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *TakeViews) key(sessionID string) string {
	return "session:view:" + sessionID
}

func (r *TakeViews) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

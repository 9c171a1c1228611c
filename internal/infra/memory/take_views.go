package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizcraft-service/internal/domain"
)

// ViewLoader builds a taker view from the durable store (the hosting service).
type ViewLoader interface {
	LoadTakeView(ctx context.Context, sessionID string) (domain.TakeView, error)
}

// TakeViews caches taker-facing session views with TTL to avoid repeated
// store hits on the public fetch path. Session snapshots are immutable, so
// the only staleness concern is a stop, which calls Forget.
type TakeViews struct {
	loader ViewLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedView
}

type cachedView struct {
	view      domain.TakeView
	expiresAt time.Time
}

func NewTakeViews(loader ViewLoader, ttl time.Duration) *TakeViews {
	return &TakeViews{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedView),
	}
}

func (r *TakeViews) GetView(ctx context.Context, sessionID string) (domain.TakeView, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[sessionID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.view, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(sessionID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[sessionID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.view, nil
		}
		r.mu.RUnlock()

		view, err := r.loader.LoadTakeView(ctx, sessionID)
		if err != nil {
			return domain.TakeView{}, err
		}

		r.mu.Lock()
		r.cache[sessionID] = cachedView{
			view:      view,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return view, nil
	})
	if err != nil {
		return domain.TakeView{}, err
	}
	return result.(domain.TakeView), nil
}

func (r *TakeViews) Forget(_ context.Context, sessionID string) {
	r.mu.Lock()
	delete(r.cache, sessionID)
	r.mu.Unlock()
}

func (r *TakeViews) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

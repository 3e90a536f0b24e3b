package health

import (
	"context"
	"sync"
	"time"
)

// CachedChecker wraps checker so its result is reused for ttl. Readiness
// probes then cost at most one upstream call per ttl. A nil clock uses
// time.Now.
func CachedChecker(checker HealthChecker, ttl time.Duration, now func() time.Time) HealthChecker {
	if now == nil {
		now = time.Now
	}

	var (
		mu      sync.Mutex
		checked time.Time
		last    error
	)

	return func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		if !checked.IsZero() && now().Sub(checked) < ttl {
			return last
		}
		last = checker(ctx)
		checked = now()
		return last
	}
}

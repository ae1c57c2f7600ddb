package gen

import (
	"sync"
)

// InflightGuard rejects a second concurrent generation for the same feature
// and user. Without it a double-click consumes two credits and writes two
// audit rows for one intended request.
type InflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInflightGuard creates an empty guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{active: make(map[string]struct{})}
}

// Acquire reserves the feature+user slot. It returns a release function on
// success and ErrInFlight if the slot is already taken. The release function
// is idempotent.
func (g *InflightGuard) Acquire(feature, userID string) (func(), error) {
	key := feature + ":" + userID

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return nil, ErrInFlight
	}
	g.active[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}
	return release, nil
}

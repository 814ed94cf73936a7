package cache

import (
	"sync"
	"time"

	"goonzette-automation/internal/domain"
)

// MemoryGuard is the in-process fallback for domain.OnceGuard used when no
// Redis address is configured. It does not survive a restart.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryGuard creates a guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]time.Time)}
}

var _ domain.OnceGuard = (*MemoryGuard)(nil)

// Once runs fn only if the key has not been used within its ttl.
func (g *MemoryGuard) Once(key string, ttl time.Duration, fn func() error) error {
	g.mu.Lock()
	now := time.Now()
	if expires, ok := g.seen[key]; ok && now.Before(expires) {
		g.mu.Unlock()
		return nil
	}
	g.seen[key] = now.Add(ttl)
	g.mu.Unlock()

	if err := fn(); err != nil {
		g.mu.Lock()
		delete(g.seen, key)
		g.mu.Unlock()
		return err
	}
	return nil
}

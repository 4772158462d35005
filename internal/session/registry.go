package session

import (
	"context"
	"log"
	"sync"
	"time"

	"fridge-chef/internal/chef"
)

// Registry keeps sessions in memory. Nothing survives a restart.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	suggester chef.Suggester
	ttl       time.Duration
}

// NewRegistry creates a registry whose sessions use the given suggester and
// expire after ttl of inactivity.
func NewRegistry(suggester chef.Suggester, ttl time.Duration) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		suggester: suggester,
		ttl:       ttl,
	}
}

// Get returns an existing session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// GetOrCreate returns the session with the id, creating it if needed.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := New(id, r.suggester)
	r.sessions[id] = s
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				log.Printf("Evicted %d idle sessions", n)
			}
		}
	}
}

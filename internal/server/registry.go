package server

import (
	"sync"
	"time"

	"github.com/rbright/mockview/internal/session"
)

// entry serializes every transition of one session.
type entry struct {
	mu       sync.Mutex
	state    session.Session
	lastSeen time.Time
}

type registry struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*entry
}

func newRegistry(now func() time.Time) *registry {
	return &registry{now: now, entries: make(map[string]*entry)}
}

func (r *registry) get(id string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if ok {
		e.lastSeen = r.now()
	}
	return e, ok
}

// add stores state under its id unless the id is already taken.
func (r *registry) add(state session.Session) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.entries[state.ID()]; taken {
		return nil, false
	}
	e := &entry{state: state, lastSeen: r.now()}
	r.entries[state.ID()] = e
	return e, true
}

// sweep drops sessions idle for longer than ttl and returns their ids.
func (r *registry) sweep(ttl time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-ttl)
	var expired []string
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			expired = append(expired, id)
		}
	}
	return expired
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

package registry

import (
	"sort"
	"sync"

	"courier/internal/core/contracts"
)

// Registry holds the bidirectional live map between user identity and
// connection. Identity -> connection is a partial function: at most one live
// connection per identity; connection -> identity is injective over live
// connections.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]contracts.Client // user_id -> live client
	byConn map[string]string           // conn_id -> user_id
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]contracts.Client),
		byConn: make(map[string]string),
	}
}

// Admit installs c, evicting any prior connection for the same identity.
// Eviction removes both directions of the old mapping; the evicted transport
// itself is left running.
func (r *Registry) Admit(c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID := c.UserID()
	if old, ok := r.byUser[userID]; ok && old.ConnID() != c.ConnID() {
		delete(r.byConn, old.ConnID())
	}
	r.byUser[userID] = c
	r.byConn[c.ConnID()] = userID
}

// Remove drops connID if it is still the live mapping for its identity.
// A close arriving after a fresher Admit for the same identity is a no-op.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)
	if live, ok := r.byUser[userID]; ok && live.ConnID() == connID {
		delete(r.byUser, userID)
	}
}

func (r *Registry) Resolve(userID string) (contracts.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

func (r *Registry) IdentityOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// OnlineIdentities snapshots the online set, sorted for stable payloads.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Clients snapshots every live connection for fanout. Sends happen outside
// the lock.
func (r *Registry) Clients() []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]contracts.Client, 0, len(r.byUser))
	for _, c := range r.byUser {
		out = append(out, c)
	}
	return out
}

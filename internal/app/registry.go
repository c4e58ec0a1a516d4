package app

import (
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Registry maps a user identity to its single live connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]*core.Connection
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.UserID]*core.Connection),
	}
}

// Register binds conn to its user, last writer wins. The evicted handle, if any,
// is returned for caller-side cleanup.
func (r *Registry) Register(conn *core.Connection) (*core.Connection, bool) {
	uid := conn.UserID()
	r.mu.Lock()
	prev, ok := r.conns[uid]
	r.conns[uid] = conn
	r.mu.Unlock()

	if ok && prev == conn {
		return nil, false
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", conn.ID()).Bool("evicted", ok).Msg("registered")
	return prev, ok
}

// Unregister removes uid only while conn is still its registered handle, so a stale
// connection closing late never drops a newer one.
func (r *Registry) Unregister(uid domain.UserID, conn *core.Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[uid]
	if !ok || cur != conn {
		return false
	}
	delete(r.conns, uid)
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", conn.ID()).Msg("unregistered")
	return true
}

func (r *Registry) Lookup(uid domain.UserID) (*core.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[uid]
	return c, ok
}

// IsCurrent reports whether conn is the registered handle of its user.
func (r *Registry) IsCurrent(conn *core.Connection) bool {
	c, ok := r.Lookup(conn.UserID())
	return ok && c == conn
}

func (r *Registry) Snapshot() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.conns)
}

func (r *Registry) Connections() []*core.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.conns)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

const persistTimeout = 5 * time.Second

// PresenceMirror publishes online status to an external directory.
type PresenceMirror interface {
	Online(ctx context.Context, uid domain.UserID) error
	Offline(ctx context.Context, uid domain.UserID) error
}

type nopMirror struct{}

func (nopMirror) Online(context.Context, domain.UserID) error  { return nil }
func (nopMirror) Offline(context.Context, domain.UserID) error { return nil }

type PresenceOptions struct {
	// NotifyEvicted sends session_replaced to a connection displaced by a newer one
	// and closes it. Off by default: the old handle is orphaned silently.
	NotifyEvicted bool
	Mirror        PresenceMirror
	Now           func() time.Time
}

// Presence announces online/offline transitions to every connection.
type Presence struct {
	registry *Registry
	store    core.Store
	locks    *KeyMutex
	opts     PresenceOptions

	pending sync.WaitGroup

	// writes numbers each user's background status writes; guarded by seqMu.
	seqMu  sync.Mutex
	writes map[domain.UserID]*presenceWrites
}

// presenceWrites tracks one user's queued and applied status writes.
type presenceWrites struct {
	issued  uint64
	applied uint64
	queued  int
}

func NewPresence(registry *Registry, store core.Store, locks *KeyMutex, opts PresenceOptions) *Presence {
	if opts.Mirror == nil {
		opts.Mirror = nopMirror{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Presence{
		registry: registry,
		store:    store,
		locks:    locks,
		opts:     opts,
		writes:   make(map[domain.UserID]*presenceWrites),
	}
}

// Online registers conn and announces it. It returns the evicted connection, if any.
func (p *Presence) Online(ctx context.Context, conn *core.Connection) *core.Connection {
	uid := conn.UserID()
	unlock := p.locks.Lock("user:" + string(uid))
	defer unlock()

	evicted, ok := p.registry.Register(conn)
	if ok && p.opts.NotifyEvicted {
		evicted.SendError(domain.NewError(domain.KindConflict, domain.CodeSessionReplaced, "signed in from another connection"))
		evicted.Signal().Close()
	}

	p.broadcast(core.NewUserOnline(conn.User()))
	_ = conn.Send(core.NewOnlineUsers(p.registry.Snapshot()))

	p.persist(ctx, uid, true)
	return evicted
}

// Offline unregisters conn and announces it. A connection that is no longer the
// registered handle is ignored, which makes repeated cleanup harmless.
func (p *Presence) Offline(ctx context.Context, conn *core.Connection) bool {
	uid := conn.UserID()
	unlock := p.locks.Lock("user:" + string(uid))
	defer unlock()

	if !p.registry.Unregister(uid, conn) {
		return false
	}
	p.broadcast(core.NewUserOffline(conn.User(), p.opts.Now()))
	p.persist(ctx, uid, false)
	return true
}

func (p *Presence) broadcast(v any) {
	frame, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode presence event")
		return
	}
	for _, c := range p.registry.Connections() {
		_ = c.SendFrame(frame)
	}
}

// persist records status in the background. Failures are logged and never affect
// in-memory presence. Writes for one user are applied in transition order: a write
// that finds a newer one already applied is skipped.
func (p *Presence) persist(ctx context.Context, uid domain.UserID, online bool) {
	at := p.opts.Now()
	seq := p.issue(uid)
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		unlock := p.locks.Lock(presenceKey(uid))
		defer unlock()
		defer p.settle(uid)

		if !p.claim(uid, seq) {
			return
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()

		logger := log.With().Str("module", "app.presence").Str("user", string(uid)).Bool("online", online).Logger()
		if err := p.store.SetUserPresence(ctx, uid, online, at); err != nil {
			logger.Warn().Err(err).Msg("record presence")
		}
		var err error
		if online {
			err = p.opts.Mirror.Online(ctx, uid)
		} else {
			err = p.opts.Mirror.Offline(ctx, uid)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("mirror presence")
		}
	}()
}

// presenceKey serializes background writes without holding the user: key.
func presenceKey(uid domain.UserID) string { return "presence:" + string(uid) }

// issue numbers a new write for uid. Callers hold the user: key.
func (p *Presence) issue(uid domain.UserID) uint64 {
	p.seqMu.Lock()
	defer p.seqMu.Unlock()
	w, ok := p.writes[uid]
	if !ok {
		w = &presenceWrites{}
		p.writes[uid] = w
	}
	w.issued++
	w.queued++
	return w.issued
}

// claim reports whether write seq is newer than everything applied so far.
func (p *Presence) claim(uid domain.UserID, seq uint64) bool {
	p.seqMu.Lock()
	defer p.seqMu.Unlock()
	w := p.writes[uid]
	if seq <= w.applied {
		return false
	}
	w.applied = seq
	return true
}

func (p *Presence) settle(uid domain.UserID) {
	p.seqMu.Lock()
	defer p.seqMu.Unlock()
	w := p.writes[uid]
	if w.queued--; w.queued == 0 && w.applied == w.issued {
		delete(p.writes, uid)
	}
}

// KeepAlive re-publishes every online user to the mirror until ctx is done.
func (p *Presence) KeepAlive(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for _, uid := range p.registry.Snapshot() {
				p.refresh(ctx, uid)
			}
		}
	}
}

// refresh renews uid's mirror entry unless the user went offline meanwhile.
func (p *Presence) refresh(ctx context.Context, uid domain.UserID) {
	unlock := p.locks.Lock(presenceKey(uid))
	defer unlock()
	if _, ok := p.registry.Lookup(uid); !ok {
		return
	}
	if err := p.opts.Mirror.Online(ctx, uid); err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Str("user", string(uid)).Msg("refresh presence")
	}
}

// Wait blocks until background presence writes have finished.
func (p *Presence) Wait() {
	p.pending.Wait()
}

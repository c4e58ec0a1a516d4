package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/adapters/storage/memory"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	online  chan domain.UserID
	offline chan domain.UserID
}

func (m *recordingMirror) Online(_ context.Context, uid domain.UserID) error {
	m.online <- uid
	return nil
}

func (m *recordingMirror) Offline(_ context.Context, uid domain.UserID) error {
	m.offline <- uid
	return nil
}

type lastStateMirror struct {
	mu     sync.Mutex
	online map[domain.UserID]bool
}

func (m *lastStateMirror) Online(_ context.Context, uid domain.UserID) error {
	m.set(uid, true)
	return nil
}

func (m *lastStateMirror) Offline(_ context.Context, uid domain.UserID) error {
	m.set(uid, false)
	return nil
}

func (m *lastStateMirror) set(uid domain.UserID, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[uid] = online
}

func (m *lastStateMirror) get(uid domain.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online[uid]
}

func newPresence(t *testing.T, opts PresenceOptions) (*Presence, *Registry, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.PutUser(domain.User{ID: "x", Username: "user-x"})
	store.PutUser(domain.User{ID: "y", Username: "user-y"})
	reg := NewRegistry()
	return NewPresence(reg, store, NewKeyMutex(), opts), reg, store
}

func TestPresence_Online_BroadcastsAndSendsSnapshotToNewcomer(t *testing.T) {
	req := require.New(t)
	p, _, store := newPresence(t, PresenceOptions{})
	ctx := context.Background()
	x, sx := newConn("x")
	y, sy := newConn("y")

	p.Online(ctx, x)
	p.Online(ctx, y)
	p.Wait()

	// x saw its own announcement, its snapshot, then y arriving.
	req.Equal([]string{"user_online", "online_users", "user_online"}, sx.Types())
	req.Equal([]string{"user_online", "online_users"}, sy.Types())

	snap := sy.Last()
	req.ElementsMatch([]any{"x", "y"}, snap["userIds"])

	u, err := store.FindUser(ctx, "y")
	req.NoError(err)
	req.True(u.IsOnline)
}

func TestPresence_Offline_BroadcastsLastSeen(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p, reg, store := newPresence(t, PresenceOptions{Now: func() time.Time { return at }})
	ctx := context.Background()
	x, _ := newConn("x")
	y, sy := newConn("y")
	p.Online(ctx, x)
	p.Online(ctx, y)

	req.True(p.Offline(ctx, x))
	req.False(p.Offline(ctx, x))
	p.Wait()

	req.Equal("user_offline", sy.Types()[len(sy.Types())-1])
	last := sy.Last()
	req.Equal("x", last["userId"])
	req.Equal(at.Format(time.RFC3339), last["lastSeenAt"])
	req.Equal([]domain.UserID{"y"}, reg.Snapshot())

	u, err := store.FindUser(ctx, "x")
	req.NoError(err)
	req.False(u.IsOnline)
	req.Equal(at, u.LastSeen)
}

func TestPresence_EvictedConnectionDoesNotAnnounceOffline(t *testing.T) {
	req := require.New(t)
	p, reg, _ := newPresence(t, PresenceOptions{})
	ctx := context.Background()
	old, sOld := newConn("x")
	fresh, _ := newConn("x")
	watcher, sw := newConn("y")
	p.Online(ctx, watcher)
	p.Online(ctx, old)

	evicted := p.Online(ctx, fresh)
	req.Same(old, evicted)
	req.False(p.Offline(ctx, old))
	p.Wait()

	req.NotContains(sw.Types(), "user_offline")
	req.True(reg.IsCurrent(fresh))
	// Silent orphaning: no notice to the evicted handle.
	req.NotContains(sOld.Types(), "error")
}

func TestPresence_NotifyEvicted(t *testing.T) {
	req := require.New(t)
	p, _, _ := newPresence(t, PresenceOptions{NotifyEvicted: true})
	ctx := context.Background()
	old, sOld := newConn("x")
	fresh, _ := newConn("x")
	p.Online(ctx, old)

	p.Online(ctx, fresh)
	p.Wait()

	req.Equal("error", sOld.Types()[len(sOld.Types())-1])
	req.Equal(domain.CodeSessionReplaced, sOld.Last()["error"])
	req.Error(old.Signal().TrySend(core.Frame("{}")))
}

func TestPresence_MirrorAndPersistFailuresAreBestEffort(t *testing.T) {
	req := require.New(t)
	mirror := &recordingMirror{online: make(chan domain.UserID, 1), offline: make(chan domain.UserID, 1)}
	p, reg, _ := newPresence(t, PresenceOptions{Mirror: mirror})
	ctx := context.Background()
	ghost, _ := newConn("ghost") // unknown to the store: persistence fails

	p.Online(ctx, ghost)
	req.Equal(domain.UserID("ghost"), <-mirror.online)
	p.Offline(ctx, ghost)
	req.Equal(domain.UserID("ghost"), <-mirror.offline)
	p.Wait()

	req.Zero(reg.Len())
}

func TestPresence_WritesFollowTransitionOrder(t *testing.T) {
	req := require.New(t)
	mirror := &lastStateMirror{online: make(map[domain.UserID]bool)}
	p, _, store := newPresence(t, PresenceOptions{Mirror: mirror})
	ctx := context.Background()

	for range 100 {
		x, _ := newConn("x")
		p.Online(ctx, x)
		req.True(p.Offline(ctx, x))
	}
	p.Wait()

	u, err := store.FindUser(ctx, "x")
	req.NoError(err)
	req.False(u.IsOnline)
	req.False(mirror.get("x"))

	x, _ := newConn("x")
	p.Online(ctx, x)
	p.Wait()

	u, err = store.FindUser(ctx, "x")
	req.NoError(err)
	req.True(u.IsOnline)
	req.True(mirror.get("x"))

	p.seqMu.Lock()
	defer p.seqMu.Unlock()
	req.Empty(p.writes)
}

package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

type RoomInfo struct {
	ChatID      domain.ChatID `json:"chatId"`
	MemberCount int             `json:"memberCount"`
	Members     []domain.UserID `json:"members"`
}

// RoomManager resolves chat ids to live rooms of connected members.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.ChatID]core.RoomService

	registry *Registry
	store    core.Store
	policy   Policy
}

func NewRoomManager(registry *Registry, store core.Store, policy Policy) *RoomManager {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &RoomManager{
		rooms:    make(map[domain.ChatID]core.RoomService),
		registry: registry,
		store:    store,
		policy:   policy,
	}
}

func (m *RoomManager) Get(chatID domain.ChatID) (core.RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[chatID]
	return r, ok
}

// JoinAll joins conn to every chat the store lists for its user.
func (m *RoomManager) JoinAll(ctx context.Context, conn *core.Connection) (int, error) {
	chats, err := m.store.ChatsOfUser(ctx, conn.UserID())
	if err != nil {
		return 0, fmt.Errorf("chats of user %s: %w", conn.UserID(), err)
	}
	joined := 0
	for _, id := range chats {
		if m.Join(conn, id) == nil {
			joined++
		}
	}
	log.Info().Str("module", "app.rooms").Str("user", string(conn.UserID())).Int("rooms", joined).Msg("joined chats on connect")
	return joined, nil
}

// Join adds conn to the room of chatID. Only the registered connection of a user may join.
func (m *RoomManager) Join(conn *core.Connection, chatID domain.ChatID) *domain.Error {
	if !m.registry.IsCurrent(conn) {
		return domain.NewError(domain.KindAuthorization, domain.CodeNotConnected, "connection is not registered")
	}
	for {
		m.mu.RLock()
		room, ok := m.rooms[chatID]
		if ok {
			// Held under RLock so the room cannot be reaped between lookup and add.
			room.AddMember(conn)
			m.mu.RUnlock()
			break
		}
		m.mu.RUnlock()

		m.mu.Lock()
		if _, ok := m.rooms[chatID]; !ok {
			m.rooms[chatID] = core.NewRoomService(chatID)
		}
		m.mu.Unlock()
	}

	// A disconnect may have raced the add.
	if !m.registry.IsCurrent(conn) {
		m.Leave(conn, chatID)
		return domain.NewError(domain.KindAuthorization, domain.CodeNotConnected, "connection is not registered")
	}
	return nil
}

func (m *RoomManager) Leave(conn *core.Connection, chatID domain.ChatID) bool {
	m.mu.RLock()
	room, ok := m.rooms[chatID]
	removed := ok && room.RemoveMember(conn)
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if room.MemberCount() == 0 {
		m.reap(chatID)
	}
	return removed
}

// LeaveAll removes conn from all of its rooms. Safe to call repeatedly.
func (m *RoomManager) LeaveAll(conn *core.Connection) {
	for _, id := range conn.Rooms() {
		m.Leave(conn, id)
	}
}

func (m *RoomManager) reap(chatID domain.ChatID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[chatID]; ok && room.MemberCount() == 0 {
		delete(m.rooms, chatID)
	}
}

// Members returns a snapshot of the room's connections.
func (m *RoomManager) Members(chatID domain.ChatID) []*core.Connection {
	room, ok := m.Get(chatID)
	if !ok {
		return nil
	}
	return room.Members()
}

// Broadcast encodes v once and fans it out to the room, applying the backpressure policy
// to members that refused the frame.
func (m *RoomManager) Broadcast(chatID domain.ChatID, except domain.UserID, v any) core.PublishResult {
	room, ok := m.Get(chatID)
	if !ok {
		return core.PublishResult{}
	}
	frame, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.rooms").Msg("encode broadcast")
		return core.PublishResult{}
	}
	res := room.Broadcast(except, frame)
	for _, slow := range res.Dropped {
		if m.policy.OnBackPressure(chatID, slow) == KickMember {
			log.Warn().Str("module", "app.rooms").Str("user", string(slow.UserID())).Msg("kicking slow member")
			slow.Signal().Close()
		}
	}
	return res
}

// StopRoom drops the room and detaches its members.
func (m *RoomManager) StopRoom(chatID domain.ChatID) {
	m.mu.Lock()
	room, ok := m.rooms[chatID]
	delete(m.rooms, chatID)
	m.mu.Unlock()
	if !ok {
		return
	}
	for _, c := range room.Members() {
		room.RemoveMember(c)
	}
}

func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		members := r.UserIDs()
		slices.Sort(members)
		out = append(out, RoomInfo{ChatID: id, MemberCount: len(members), Members: members})
	}
	return out
}

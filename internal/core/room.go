package core

import (
	"sync"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// PublishResult reports delivery stats to the caller.
type PublishResult struct {
	SendTo  int
	Dropped []*Connection
}

// RoomService is the live broadcast group of one chat.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ChatID() domain.ChatID
	MemberCount() int
	Members() []*Connection
	UserIDs() []domain.UserID
	Has(uid domain.UserID) bool

	AddMember(c *Connection)
	RemoveMember(c *Connection) bool
	// Broadcast sends data to every member except `except` ("" excludes nobody).
	Broadcast(except domain.UserID, data Frame) PublishResult
}

// roomImpl is a threadsafe in-memory room.
type roomImpl struct {
	chatID domain.ChatID

	mu     sync.RWMutex
	byUser map[domain.UserID]*Connection

	// sendMu keeps every member seeing this room's broadcasts in the same order.
	sendMu sync.Mutex
}

func NewRoomService(chatID domain.ChatID) RoomService {
	return &roomImpl{
		chatID: chatID,
		byUser: make(map[domain.UserID]*Connection),
	}
}

func (r *roomImpl) ChatID() domain.ChatID { return r.chatID }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

func (r *roomImpl) Members() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.byUser)
}

func (r *roomImpl) UserIDs() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.byUser)
}

func (r *roomImpl) Has(uid domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[uid]
	return ok
}

// AddMember replaces any previous connection of the same user.
func (r *roomImpl) AddMember(c *Connection) {
	r.mu.Lock()
	prev, replaced := r.byUser[c.UserID()]
	r.byUser[c.UserID()] = c
	r.mu.Unlock()

	if replaced && prev != c {
		prev.markLeft(r.chatID)
	}
	c.markJoined(r.chatID)
	log.Debug().Str("module", "core.room").Str("chat", string(r.chatID)).Str("user", string(c.UserID())).Msg("member added")
}

// RemoveMember drops c only if it is still the user's connection in this room.
func (r *roomImpl) RemoveMember(c *Connection) bool {
	r.mu.Lock()
	cur, ok := r.byUser[c.UserID()]
	removed := ok && cur == c
	if removed {
		delete(r.byUser, c.UserID())
	}
	r.mu.Unlock()

	c.markLeft(r.chatID)
	if removed {
		log.Debug().Str("module", "core.room").Str("chat", string(r.chatID)).Str("user", string(c.UserID())).Msg("member removed")
	}
	return removed
}

func (r *roomImpl) Broadcast(except domain.UserID, data Frame) PublishResult {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	res := PublishResult{}
	for _, m := range r.Members() {
		if except != "" && m.UserID() == except {
			continue
		}
		if err := m.SendFrame(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("chat", string(r.chatID)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

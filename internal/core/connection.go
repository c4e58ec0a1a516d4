package core

import (
	"sync"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Connection binds an authenticated user to its transport endpoint and tracks the
// rooms it joined. This is what the registry and rooms store and fan out to.
type Connection struct {
	id     string
	user   *domain.User
	signal SignalConnection

	mu    sync.RWMutex
	rooms map[domain.ChatID]struct{}
}

func NewConnection(user *domain.User, signal SignalConnection) *Connection {
	return &Connection{
		id:     uuid.NewString(),
		user:   user,
		signal: signal,
		rooms:  make(map[domain.ChatID]struct{}),
	}
}

func (c *Connection) ID() string               { return c.id }
func (c *Connection) User() *domain.User       { return c.user }
func (c *Connection) UserID() domain.UserID    { return c.user.ID }
func (c *Connection) Signal() SignalConnection { return c.signal }

// Send encodes v and hands it to the transport without blocking.
func (c *Connection) Send(v any) error {
	f, err := Encode(v)
	if err != nil {
		return err
	}
	return c.SendFrame(f)
}

func (c *Connection) SendFrame(f Frame) error {
	if err := c.signal.TrySend(f); err != nil {
		log.Debug().Err(err).Str("module", "core.connection").Str("user", string(c.user.ID)).Msg("frame dropped")
		return err
	}
	return nil
}

func (c *Connection) SendError(e *domain.Error) {
	_ = c.Send(NewError(e))
}

func (c *Connection) Joined(chatID domain.ChatID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[chatID]
	return ok
}

func (c *Connection) Rooms() []domain.ChatID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Keys(c.rooms)
}

func (c *Connection) markJoined(chatID domain.ChatID) {
	c.mu.Lock()
	c.rooms[chatID] = struct{}{}
	c.mu.Unlock()
}

func (c *Connection) markLeft(chatID domain.ChatID) {
	c.mu.Lock()
	delete(c.rooms, chatID)
	c.mu.Unlock()
}

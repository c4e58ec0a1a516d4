// Package memory is an in-process core.Store used for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Store struct {
	mu       sync.RWMutex
	users    map[domain.UserID]domain.User
	chats    map[domain.ChatID]domain.Chat
	messages map[domain.MessageID]domain.Message
	now      func() time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[domain.UserID]domain.User),
		chats:    make(map[domain.ChatID]domain.Chat),
		messages: make(map[domain.MessageID]domain.Message),
		now:      time.Now,
	}
}

func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutChat(c domain.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Users = slices.Clone(c.Users)
	s.chats[c.ID] = c
}

func (s *Store) DeleteChat(id domain.ChatID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, id)
}

func (s *Store) FindUser(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) SetUserPresence(_ context.Context, id domain.UserID, online bool, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.IsOnline = online
	u.LastSeen = lastSeen
	s.users[id] = u
	return nil
}

func (s *Store) FindChat(_ context.Context, id domain.ChatID) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	c.Users = slices.Clone(c.Users)
	return &c, nil
}

func (s *Store) ChatsOfUser(_ context.Context, id domain.UserID) ([]domain.ChatID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ChatID
	for _, c := range s.chats {
		if c.HasMember(id) {
			out = append(out, c.ID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) SetLatestMessage(_ context.Context, chatID domain.ChatID, msgID domain.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	c.LatestMessage = msgID
	s.chats[chatID] = c
	return nil
}

func (s *Store) CreateMessage(_ context.Context, m *domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := clone(*m)
	created.ID = domain.MessageID(uuid.NewString())
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.messages[created.ID] = created
	out := clone(created)
	return &out, nil
}

func (s *Store) FindMessage(_ context.Context, id domain.MessageID) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	out := clone(m)
	return &out, nil
}

func (s *Store) UpdateMessage(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[m.ID]; !ok {
		return fmt.Errorf("message %s: %w", m.ID, domain.ErrNotFound)
	}
	s.messages[m.ID] = clone(*m)
	return nil
}

func (s *Store) AddDeliveredTo(_ context.Context, id domain.MessageID, users []domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	m.DeliveredTo = lo.Uniq(append(slices.Clone(m.DeliveredTo), users...))
	s.messages[id] = m
	return nil
}

func (s *Store) UnreadMessages(_ context.Context, chatID domain.ChatID, uid domain.UserID) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.Chat == chatID && m.Sender != uid && !m.HasRead(uid) {
			out = append(out, clone(m))
		}
	}
	slices.SortFunc(out, func(a, b domain.Message) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func clone(m domain.Message) domain.Message {
	m.DeliveredTo = slices.Clone(m.DeliveredTo)
	m.ReadBy = slices.Clone(m.ReadBy)
	m.Reactions = slices.Clone(m.Reactions)
	return m
}

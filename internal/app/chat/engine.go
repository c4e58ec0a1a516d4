// Package chat validates, persists and fans out chat-scoped events.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

type Engine struct {
	store   core.Store
	rooms   *app.RoomManager
	locks   *app.KeyMutex
	tracker *Tracker
	now     func() time.Time
}

func NewEngine(store core.Store, rooms *app.RoomManager, tracker *Tracker, locks *app.KeyMutex, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, rooms: rooms, locks: locks, tracker: tracker, now: now}
}

func chatKey(id domain.ChatID) string { return "chat:" + string(id) }

// requireJoined rejects commands from connections outside the target room.
func requireJoined(conn *core.Connection, chatID domain.ChatID) *domain.Error {
	if !conn.Joined(chatID) {
		return domain.NotInChat()
	}
	return nil
}

// Send persists a new message and broadcasts it to the room, sender included.
// Sends to the same chat are serialized so persistence and broadcast order agree.
func (e *Engine) Send(ctx context.Context, conn *core.Connection, p core.SendMessage) *domain.Error {
	if de := requireJoined(conn, p.ChatID); de != nil {
		return de
	}
	if p.Type == "" {
		p.Type = domain.MessageText
	}
	if !p.Type.Valid() {
		return domain.Validation("unknown message type")
	}
	if strings.TrimSpace(p.Content) == "" && p.FileURL == "" {
		return domain.Validation("message is empty")
	}

	unlock := e.locks.Lock(chatKey(p.ChatID))
	defer unlock()

	chat, de := loadChat(ctx, e.store, p.ChatID)
	if de != nil {
		return de
	}
	if !chat.HasMember(conn.UserID()) {
		return domain.NotInChat()
	}

	msg, err := e.store.CreateMessage(ctx, &domain.Message{
		Sender:   conn.UserID(),
		Chat:     p.ChatID,
		Content:  strings.TrimSpace(p.Content),
		Type:     p.Type,
		FileURL:  p.FileURL,
		FileName: p.FileName,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "chat.engine").Str("chat", string(p.ChatID)).Msg("create message")
		return domain.Persistence("Failed to send message", err)
	}
	if err := e.store.SetLatestMessage(ctx, p.ChatID, msg.ID); err != nil {
		log.Warn().Err(err).Str("module", "chat.engine").Str("chat", string(p.ChatID)).Msg("update latest message")
	}

	e.rooms.Broadcast(p.ChatID, "", core.NewReceiveMessage(msg, conn.User().Ref()))

	if _, err := e.tracker.Delivered(ctx, msg, chat); err != nil {
		log.Warn().Err(err).Str("module", "chat.engine").Str("message", string(msg.ID)).Msg("record delivery")
	}
	return nil
}

// mutate runs fn on the addressed message under its key and persists the result.
func (e *Engine) mutate(ctx context.Context, conn *core.Connection, ref core.MessageRef, fn func(m *domain.Message) (any, *domain.Error)) *domain.Error {
	if de := requireJoined(conn, ref.ChatID); de != nil {
		return de
	}
	unlock := e.locks.Lock(messageKey(ref.MessageID))
	defer unlock()

	msg, de := loadMessage(ctx, e.store, ref.MessageID, ref.ChatID)
	if de != nil {
		return de
	}
	ev, de := fn(msg)
	if de != nil {
		return de
	}
	if ev == nil {
		return nil
	}
	if err := e.store.UpdateMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "chat.engine").Str("message", string(msg.ID)).Msg("update message")
		return domain.Persistence("Failed to update message", err)
	}
	e.rooms.Broadcast(ref.ChatID, "", ev)
	return nil
}

func (e *Engine) Edit(ctx context.Context, conn *core.Connection, p core.EditMessage) *domain.Error {
	return e.mutate(ctx, conn, p.MessageRef, func(m *domain.Message) (any, *domain.Error) {
		if m.Sender != conn.UserID() {
			return nil, domain.NewError(domain.KindAuthorization, domain.CodeForbidden, "Cannot edit this message")
		}
		if m.IsDeleted {
			return nil, domain.Validation("Cannot edit a deleted message")
		}
		m.Edit(p.Content, e.now())
		return core.NewMessageEdited(m), nil
	})
}

func (e *Engine) Delete(ctx context.Context, conn *core.Connection, p core.MessageRef) *domain.Error {
	return e.mutate(ctx, conn, p, func(m *domain.Message) (any, *domain.Error) {
		if m.Sender != conn.UserID() {
			return nil, domain.NewError(domain.KindAuthorization, domain.CodeForbidden, "Cannot delete this message")
		}
		m.SoftDelete(e.now())
		return core.NewMessageDeleted(m), nil
	})
}

// React sets the user's single reaction on the message, replacing an earlier one.
func (e *Engine) React(ctx context.Context, conn *core.Connection, p core.AddReaction) *domain.Error {
	return e.mutate(ctx, conn, p.MessageRef, func(m *domain.Message) (any, *domain.Error) {
		m.React(conn.UserID(), p.Emoji)
		return core.NewReactionAdded(m.ID, conn.User(), p.Emoji), nil
	})
}

func (e *Engine) Unreact(ctx context.Context, conn *core.Connection, p core.MessageRef) *domain.Error {
	return e.mutate(ctx, conn, p, func(m *domain.Message) (any, *domain.Error) {
		if !m.Unreact(conn.UserID()) {
			return nil, nil
		}
		return core.NewReactionRemoved(m.ID, conn.UserID()), nil
	})
}

func (e *Engine) MarkRead(ctx context.Context, conn *core.Connection, p core.MessageRef) *domain.Error {
	if de := requireJoined(conn, p.ChatID); de != nil {
		return de
	}
	_, de := e.tracker.MarkRead(ctx, conn.UserID(), p.ChatID, p.MessageID)
	return de
}

func (e *Engine) MarkAllRead(ctx context.Context, conn *core.Connection, p core.ChatRef) *domain.Error {
	if de := requireJoined(conn, p.ChatID); de != nil {
		return de
	}
	_, de := e.tracker.MarkAllRead(ctx, conn.UserID(), p.ChatID)
	return de
}

// Typing relays typing/stop_typing to the other members. Nothing is stored.
func (e *Engine) Typing(conn *core.Connection, p core.ChatRef, typing bool) *domain.Error {
	if de := requireJoined(conn, p.ChatID); de != nil {
		return de
	}
	e.rooms.Broadcast(p.ChatID, conn.UserID(), core.NewTyping(p.ChatID, conn.User(), typing))
	return nil
}

// Join attaches the connection to a chat it belongs to, e.g. one created after connect.
func (e *Engine) Join(ctx context.Context, conn *core.Connection, p core.ChatRef) *domain.Error {
	chat, de := loadChat(ctx, e.store, p.ChatID)
	if de != nil {
		return de
	}
	if !chat.HasMember(conn.UserID()) {
		return domain.NotInChat()
	}
	if de := e.rooms.Join(conn, p.ChatID); de != nil {
		return de
	}
	log.Info().Str("module", "chat.engine").Str("user", string(conn.UserID())).Str("chat", string(p.ChatID)).Msg("joined chat")
	return nil
}

func (e *Engine) Leave(conn *core.Connection, p core.ChatRef) {
	e.rooms.Leave(conn, p.ChatID)
	log.Info().Str("module", "chat.engine").Str("user", string(conn.UserID())).Str("chat", string(p.ChatID)).Msg("left chat")
}

// ChatDeleted forwards a deletion performed by the CRUD service and drops the room.
func (e *Engine) ChatDeleted(ev core.ChatDeleted) {
	ev.Type = core.EventChatDeleted
	e.rooms.Broadcast(ev.ChatID, "", ev)
	e.rooms.StopRoom(ev.ChatID)
}

// MessagesCleared forwards a history wipe performed by the CRUD service.
func (e *Engine) MessagesCleared(ev core.MessagesCleared) {
	ev.Type = core.EventMessagesCleared
	e.rooms.Broadcast(ev.ChatID, "", ev)
}

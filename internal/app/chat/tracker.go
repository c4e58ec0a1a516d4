package chat

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Tracker records per-recipient delivery and read state on persisted messages.
// Every mutation holds the message's key so concurrent receipts never lose updates.
type Tracker struct {
	store    core.Store
	rooms    *app.RoomManager
	registry *app.Registry
	locks    *app.KeyMutex
	now      func() time.Time
}

func NewTracker(store core.Store, rooms *app.RoomManager, registry *app.Registry, locks *app.KeyMutex, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: store, rooms: rooms, registry: registry, locks: locks, now: now}
}

func messageKey(id domain.MessageID) string { return "msg:" + string(id) }

// Delivered marks msg as delivered to every chat member, other than the sender, whose
// live connection sits in the chat's room, then announces the set to the room.
func (t *Tracker) Delivered(ctx context.Context, msg *domain.Message, chat *domain.Chat) ([]domain.UserID, error) {
	room, ok := t.rooms.Get(chat.ID)
	if !ok {
		return nil, nil
	}
	recipients := lo.Filter(chat.Users, func(u domain.UserID, _ int) bool {
		if u == msg.Sender || !room.Has(u) {
			return false
		}
		_, online := t.registry.Lookup(u)
		return online
	})
	if len(recipients) == 0 {
		return nil, nil
	}

	unlock := t.locks.Lock(messageKey(msg.ID))
	defer unlock()
	if err := t.store.AddDeliveredTo(ctx, msg.ID, recipients); err != nil {
		return nil, err
	}
	msg.MarkDelivered(recipients)
	t.rooms.Broadcast(chat.ID, "", core.NewMessageDelivered(msg.ID, recipients))
	return recipients, nil
}

// MarkRead records that uid read msgID. A second call for the same pair is a no-op
// and reports false.
func (t *Tracker) MarkRead(ctx context.Context, uid domain.UserID, chatID domain.ChatID, msgID domain.MessageID) (bool, *domain.Error) {
	unlock := t.locks.Lock(messageKey(msgID))
	defer unlock()

	msg, de := loadMessage(ctx, t.store, msgID, chatID)
	if de != nil {
		return false, de
	}
	at := t.now()
	if msg.Sender == uid || !msg.MarkRead(uid, at) {
		return false, nil
	}
	if err := t.store.UpdateMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "chat.tracker").Str("message", string(msgID)).Msg("record read receipt")
		return false, domain.Persistence("Failed to mark message as read", err)
	}
	t.rooms.Broadcast(chatID, "", core.NewMessageRead(msgID, uid, at))
	return true, nil
}

// MarkAllRead applies MarkRead to every unread message of chatID not authored by uid.
func (t *Tracker) MarkAllRead(ctx context.Context, uid domain.UserID, chatID domain.ChatID) (int, *domain.Error) {
	unread, err := t.store.UnreadMessages(ctx, chatID, uid)
	if err != nil {
		log.Error().Err(err).Str("module", "chat.tracker").Str("chat", string(chatID)).Msg("list unread")
		return 0, domain.Persistence("Failed to mark chat as read", err)
	}
	n := 0
	for _, m := range unread {
		added, de := t.MarkRead(ctx, uid, chatID, m.ID)
		if de != nil {
			if de.Kind == domain.KindNotFound {
				continue
			}
			return n, de
		}
		if added {
			n++
		}
	}
	t.rooms.Broadcast(chatID, "", core.NewChatRead(chatID, uid))
	return n, nil
}

package bus

import (
	"testing"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	deleted []core.ChatDeleted
	cleared []core.MessagesCleared
}

func (s *recordingSink) ChatDeleted(ev core.ChatDeleted)         { s.deleted = append(s.deleted, ev) }
func (s *recordingSink) MessagesCleared(ev core.MessagesCleared) { s.cleared = append(s.cleared, ev) }

func TestHandleForwardsChatEvents(t *testing.T) {
	req := require.New(t)
	sink := &recordingSink{}
	b := NewBridge(nil, "chat.events", sink)

	req.NoError(b.Handle([]byte(`{"type":"chat_deleted","chatId":"c1","deletedBy":"x","userIds":["x","y"]}`)))
	req.NoError(b.Handle([]byte(`{"type":"chat_messages_cleared","chatId":"c2","clearedBy":"y"}`)))

	req.Len(sink.deleted, 1)
	req.Equal(domain.ChatID("c1"), sink.deleted[0].ChatID)
	req.Equal([]domain.UserID{"x", "y"}, sink.deleted[0].UserIDs)
	req.Len(sink.cleared, 1)
	req.Equal(domain.UserID("y"), sink.cleared[0].ClearedBy)
}

func TestHandleRejectsJunk(t *testing.T) {
	req := require.New(t)
	sink := &recordingSink{}
	b := NewBridge(nil, "chat.events", sink)

	req.Error(b.Handle([]byte(`not json`)))
	req.Error(b.Handle([]byte(`{"type":"receive_message"}`)))
	req.Error(b.Handle([]byte(`{"type":"chat_deleted"}`)))
	req.Empty(sink.deleted)
	req.Empty(sink.cleared)
}

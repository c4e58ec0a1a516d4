package chat

import (
	"context"
	"errors"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// loadMessage fetches msgID and checks it belongs to chatID, so a command cannot
// address a message through a room it does not live in.
func loadMessage(ctx context.Context, store core.Store, msgID domain.MessageID, chatID domain.ChatID) (*domain.Message, *domain.Error) {
	msg, err := store.FindMessage(ctx, msgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.MessageNotFound()
		}
		log.Error().Err(err).Str("module", "chat").Str("message", string(msgID)).Msg("find message")
		return nil, domain.Persistence("Failed to load message", err)
	}
	if msg.Chat != chatID {
		return nil, domain.MessageNotFound()
	}
	return msg, nil
}

func loadChat(ctx context.Context, store core.Store, chatID domain.ChatID) (*domain.Chat, *domain.Error) {
	chat, err := store.FindChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ChatNotFound()
		}
		log.Error().Err(err).Str("module", "chat").Str("chat", string(chatID)).Msg("find chat")
		return nil, domain.Persistence("Failed to load chat", err)
	}
	return chat, nil
}

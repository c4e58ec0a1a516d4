//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package core

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

// Store is the persistence collaborator. Implementations return domain.ErrNotFound
// (possibly wrapped) for missing records.
type Store interface {
	FindUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	SetUserPresence(ctx context.Context, id domain.UserID, online bool, lastSeen time.Time) error

	FindChat(ctx context.Context, id domain.ChatID) (*domain.Chat, error)
	ChatsOfUser(ctx context.Context, id domain.UserID) ([]domain.ChatID, error)
	SetLatestMessage(ctx context.Context, chatID domain.ChatID, msgID domain.MessageID) error

	// CreateMessage assigns the canonical id and timestamps.
	CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error)
	UpdateMessage(ctx context.Context, msg *domain.Message) error
	AddDeliveredTo(ctx context.Context, id domain.MessageID, users []domain.UserID) error
	// UnreadMessages lists messages of chatID not sent by uid and not yet read by uid.
	UnreadMessages(ctx context.Context, chatID domain.ChatID, uid domain.UserID) ([]domain.Message, error)
}

// Verifier maps an opaque credential to a user identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.UserID, error)
}

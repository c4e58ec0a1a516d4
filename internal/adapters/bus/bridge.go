// Package bus forwards chat lifecycle events published by the CRUD service over NATS.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// ChatEvents receives the forwarded events. chat.Engine implements it.
type ChatEvents interface {
	ChatDeleted(ev core.ChatDeleted)
	MessagesCleared(ev core.MessagesCleared)
}

type Bridge struct {
	nc      *nats.Conn
	subject string
	sink    ChatEvents
}

func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Str("module", "bus").Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("module", "bus").Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

func NewBridge(nc *nats.Conn, subject string, sink ChatEvents) *Bridge {
	return &Bridge{nc: nc, subject: subject, sink: sink}
}

// Run subscribes and forwards events until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	sub, err := b.nc.Subscribe(b.subject, func(m *nats.Msg) {
		if err := b.Handle(m.Data); err != nil {
			log.Warn().Err(err).Str("module", "bus").Str("subject", m.Subject).Msg("drop chat event")
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.subject, err)
	}
	log.Info().Str("module", "bus").Str("subject", b.subject).Msg("chat event bridge running")

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		log.Warn().Err(err).Str("module", "bus").Msg("unsubscribe")
	}
	return nil
}

// Handle decodes one event and forwards it to the sink.
func (b *Bridge) Handle(data []byte) error {
	var env struct {
		Type core.EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Type {
	case core.EventChatDeleted:
		var ev core.ChatDeleted
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if ev.ChatID == "" {
			return fmt.Errorf("%s without chatId", env.Type)
		}
		b.sink.ChatDeleted(ev)
	case core.EventMessagesCleared:
		var ev core.MessagesCleared
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if ev.ChatID == "" {
			return fmt.Errorf("%s without chatId", env.Type)
		}
		b.sink.MessagesCleared(ev)
	default:
		return fmt.Errorf("unexpected event %q", env.Type)
	}
	return nil
}

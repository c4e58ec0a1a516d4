// Package orch wires presence, rooms, chat and calls behind a single dispatch point.
package orch

import (
	"context"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/app/call"
	"github.com/dkeye/Parley/internal/app/chat"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Presence *app.Presence
	Rooms    *app.RoomManager
	Chat     *chat.Engine
	Calls    *call.Coordinator
}

type Options struct {
	Policy        app.Policy
	Mirror        app.PresenceMirror
	NotifyEvicted bool
	RejectBusy    bool
}

// New builds an Orchestrator and its components around one registry and lock table.
func New(store core.Store, opts Options) *Orchestrator {
	reg := app.NewRegistry()
	locks := app.NewKeyMutex()
	rooms := app.NewRoomManager(reg, store, opts.Policy)
	tracker := chat.NewTracker(store, rooms, reg, locks, nil)
	return &Orchestrator{
		Registry: reg,
		Presence: app.NewPresence(reg, store, locks, app.PresenceOptions{NotifyEvicted: opts.NotifyEvicted, Mirror: opts.Mirror}),
		Rooms:    rooms,
		Chat:     chat.NewEngine(store, rooms, tracker, locks, nil),
		Calls:    call.NewCoordinator(reg, locks, call.Options{RejectBusy: opts.RejectBusy}),
	}
}

// OnConnect makes conn the user's live connection and joins it to the user's chats.
func (o *Orchestrator) OnConnect(ctx context.Context, conn *core.Connection) {
	if evicted := o.Presence.Online(ctx, conn); evicted != nil {
		o.Rooms.LeaveAll(evicted)
		log.Info().Str("module", "orch").Str("user", string(conn.UserID())).Str("evicted", evicted.ID()).Msg("replaced connection")
	}
	if _, err := o.Rooms.JoinAll(ctx, conn); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("user", string(conn.UserID())).Msg("join chats")
	}
}

// OnDisconnect releases everything conn holds and reports whether conn was still the
// user's live connection. Safe to call more than once.
// Calls in progress are left to the peer to end.
func (o *Orchestrator) OnDisconnect(ctx context.Context, conn *core.Connection) bool {
	wasOnline := o.Presence.Offline(ctx, conn)
	o.Rooms.LeaveAll(conn)
	if wasOnline {
		log.Info().Str("module", "orch").Str("user", string(conn.UserID())).Msg("disconnected")
	}
	return wasOnline
}

// Dispatch runs one command to completion. Failures go to conn only.
func (o *Orchestrator) Dispatch(ctx context.Context, conn *core.Connection, cmd core.Command) {
	var de *domain.Error
	switch cmd.Type {
	case core.CmdPing:
		_ = conn.Send(core.Pong{Type: core.EventPong})
	case core.CmdInitiateCall, core.CmdCallAccepted, core.CmdCallRejected, core.CmdCallEnded, core.CmdICECandidate, core.CmdCallAnswer:
		de = o.dispatchCall(conn, cmd)
	default:
		de = o.dispatchChat(ctx, conn, cmd)
	}
	if de != nil {
		log.Debug().Str("module", "orch").Str("user", string(conn.UserID())).Str("cmd", string(cmd.Type)).Str("code", de.Code).Msg(de.Message)
		conn.SendError(de)
	}
}

package orch

import (
	"context"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

func (o *Orchestrator) dispatchChat(ctx context.Context, conn *core.Connection, cmd core.Command) *domain.Error {
	switch cmd.Type {
	case core.CmdSendMessage:
		var p core.SendMessage
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.Send(ctx, conn, p)
	case core.CmdTyping, core.CmdStopTyping:
		var p core.ChatRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.Typing(conn, p, cmd.Type == core.CmdTyping)
	case core.CmdMessageSeen:
		var p core.MessageRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.MarkRead(ctx, conn, p)
	case core.CmdMarkChatRead:
		var p core.ChatRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.MarkAllRead(ctx, conn, p)
	case core.CmdAddReaction:
		var p core.AddReaction
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.React(ctx, conn, p)
	case core.CmdRemoveReaction:
		var p core.MessageRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.Unreact(ctx, conn, p)
	case core.CmdEditMessage:
		var p core.EditMessage
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.Edit(ctx, conn, p)
	case core.CmdDeleteMessage:
		var p core.MessageRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.Delete(ctx, conn, p)
	case core.CmdJoinChat:
		var p core.ChatRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Chat.Join(ctx, conn, p)
	case core.CmdLeaveChat:
		var p core.ChatRef
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		o.Chat.Leave(conn, p)
		return nil
	}
	return domain.NewError(domain.KindValidation, domain.CodeUnknownEvent, "unknown event "+string(cmd.Type))
}

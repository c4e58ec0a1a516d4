package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/go-playground/validator/v10"
)

type CommandType string

const (
	CmdSendMessage    CommandType = "send_message"
	CmdTyping         CommandType = "typing"
	CmdStopTyping     CommandType = "stop_typing"
	CmdMessageSeen    CommandType = "message_seen"
	CmdMarkChatRead   CommandType = "mark_chat_read"
	CmdAddReaction    CommandType = "add_reaction"
	CmdRemoveReaction CommandType = "remove_reaction"
	CmdEditMessage    CommandType = "edit_message"
	CmdDeleteMessage  CommandType = "delete_message"
	CmdJoinChat       CommandType = "join_chat"
	CmdLeaveChat      CommandType = "leave_chat"
	CmdInitiateCall   CommandType = "initiate_call"
	CmdCallAccepted   CommandType = "call_accepted"
	CmdCallRejected   CommandType = "call_rejected"
	CmdCallEnded      CommandType = "call_ended"
	CmdICECandidate   CommandType = "ice_candidate"
	CmdCallAnswer     CommandType = "call_answer"
	CmdPing           CommandType = "ping"
)

var validate = validator.New()

// Command is one decoded inbound frame. Payload binding is deferred to the handler.
type Command struct {
	Type CommandType
	Raw  []byte
}

func DecodeCommand(data []byte) (Command, error) {
	var env struct {
		Type CommandType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Command{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Command{}, errors.New("missing type")
	}
	return Command{Type: env.Type, Raw: data}, nil
}

// Bind unmarshals the command into v and validates its struct tags.
func (c Command) Bind(v any) *domain.Error {
	if err := json.Unmarshal(c.Raw, v); err != nil {
		return domain.Validation("bad payload")
	}
	if err := validate.Struct(v); err != nil {
		return domain.Validation(err.Error())
	}
	return nil
}

type SendMessage struct {
	ChatID   domain.ChatID      `json:"chatId" validate:"required"`
	Content  string             `json:"content" validate:"max=10000"`
	Type     domain.MessageType `json:"messageType"`
	FileURL  string             `json:"fileUrl" validate:"omitempty,max=2048"`
	FileName string             `json:"fileName" validate:"omitempty,max=255"`
}

type ChatRef struct {
	ChatID domain.ChatID `json:"chatId" validate:"required"`
}

type MessageRef struct {
	MessageID domain.MessageID `json:"messageId" validate:"required"`
	ChatID    domain.ChatID    `json:"chatId" validate:"required"`
}

type AddReaction struct {
	MessageRef
	Emoji string `json:"emoji" validate:"required,max=32"`
}

type EditMessage struct {
	MessageRef
	Content string `json:"content" validate:"required,max=10000"`
}

type InitiateCall struct {
	To       domain.UserID   `json:"to" validate:"required"`
	CallType domain.CallType `json:"callType" validate:"required,oneof=voice video"`
	Offer    json.RawMessage `json:"offer" validate:"required"`
}

type AcceptCall struct {
	To     domain.UserID   `json:"to" validate:"required"`
	Answer json.RawMessage `json:"answer" validate:"required"`
}

// RelayAnswer carries an answer sent after the call was accepted, e.g. on renegotiation.
type RelayAnswer struct {
	To     domain.UserID   `json:"to" validate:"required"`
	Answer json.RawMessage `json:"answer" validate:"required"`
}

type CallPeer struct {
	To domain.UserID `json:"to" validate:"required"`
}

type RelayCandidate struct {
	To        domain.UserID   `json:"to" validate:"required"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

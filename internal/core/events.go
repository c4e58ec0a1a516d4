package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

type EventType string

const (
	EventOnlineUsers      EventType = "online_users"
	EventUserOnline       EventType = "user_online"
	EventUserOffline      EventType = "user_offline"
	EventReceiveMessage   EventType = "receive_message"
	EventMessageDelivered EventType = "message_delivered"
	EventMessageRead      EventType = "message_read"
	EventChatRead         EventType = "chat_read"
	EventReactionAdded    EventType = "reaction_added"
	EventReactionRemoved  EventType = "reaction_removed"
	EventMessageEdited    EventType = "message_edited"
	EventMessageDeleted   EventType = "message_deleted"
	EventChatDeleted      EventType = "chat_deleted"
	EventMessagesCleared  EventType = "chat_messages_cleared"
	EventTyping           EventType = "typing"
	EventStopTyping       EventType = "stop_typing"
	EventIncomingCall     EventType = "incoming_call"
	EventCallAccepted     EventType = "call_accepted"
	EventCallRejected     EventType = "call_rejected"
	EventCallEnded        EventType = "call_ended"
	EventICECandidate     EventType = "ice_candidate"
	EventCallAnswer       EventType = "call_answer"
	EventError            EventType = "error"
	EventPong             EventType = "pong"
)

func Encode(v any) (Frame, error) {
	return json.Marshal(v)
}

type OnlineUsers struct {
	Type    EventType       `json:"type"`
	UserIDs []domain.UserID `json:"userIds"`
}

func NewOnlineUsers(ids []domain.UserID) OnlineUsers {
	if ids == nil {
		ids = []domain.UserID{}
	}
	return OnlineUsers{Type: EventOnlineUsers, UserIDs: ids}
}

type UserOnline struct {
	Type     EventType     `json:"type"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

func NewUserOnline(u *domain.User) UserOnline {
	return UserOnline{Type: EventUserOnline, UserID: u.ID, Username: u.Username}
}

type UserOffline struct {
	Type       EventType     `json:"type"`
	UserID     domain.UserID `json:"userId"`
	Username   string        `json:"username"`
	LastSeenAt time.Time     `json:"lastSeenAt"`
}

func NewUserOffline(u *domain.User, at time.Time) UserOffline {
	return UserOffline{Type: EventUserOffline, UserID: u.ID, Username: u.Username, LastSeenAt: at}
}

// ReceiveMessage flattens the full message next to the sender's public profile.
type ReceiveMessage struct {
	Type EventType `json:"type"`
	*domain.Message
	SenderInfo domain.Ref `json:"senderInfo"`
}

func NewReceiveMessage(m *domain.Message, sender domain.Ref) ReceiveMessage {
	return ReceiveMessage{Type: EventReceiveMessage, Message: m, SenderInfo: sender}
}

type MessageDelivered struct {
	Type        EventType        `json:"type"`
	MessageID   domain.MessageID `json:"messageId"`
	DeliveredTo []domain.UserID  `json:"deliveredTo"`
}

func NewMessageDelivered(id domain.MessageID, to []domain.UserID) MessageDelivered {
	return MessageDelivered{Type: EventMessageDelivered, MessageID: id, DeliveredTo: to}
}

type MessageRead struct {
	Type      EventType        `json:"type"`
	MessageID domain.MessageID `json:"messageId"`
	UserID    domain.UserID    `json:"userId"`
	ReadAt    time.Time        `json:"readAt"`
}

func NewMessageRead(id domain.MessageID, uid domain.UserID, at time.Time) MessageRead {
	return MessageRead{Type: EventMessageRead, MessageID: id, UserID: uid, ReadAt: at}
}

type ChatRead struct {
	Type   EventType     `json:"type"`
	ChatID domain.ChatID `json:"chatId"`
	UserID domain.UserID `json:"userId"`
}

func NewChatRead(chatID domain.ChatID, uid domain.UserID) ChatRead {
	return ChatRead{Type: EventChatRead, ChatID: chatID, UserID: uid}
}

type ReactionAdded struct {
	Type      EventType        `json:"type"`
	MessageID domain.MessageID `json:"messageId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username"`
	Emoji     string           `json:"emoji"`
}

func NewReactionAdded(id domain.MessageID, u *domain.User, emoji string) ReactionAdded {
	return ReactionAdded{Type: EventReactionAdded, MessageID: id, UserID: u.ID, Username: u.Username, Emoji: emoji}
}

type ReactionRemoved struct {
	Type      EventType        `json:"type"`
	MessageID domain.MessageID `json:"messageId"`
	UserID    domain.UserID    `json:"userId"`
}

func NewReactionRemoved(id domain.MessageID, uid domain.UserID) ReactionRemoved {
	return ReactionRemoved{Type: EventReactionRemoved, MessageID: id, UserID: uid}
}

type MessageEdited struct {
	Type      EventType        `json:"type"`
	MessageID domain.MessageID `json:"messageId"`
	Content   string           `json:"content"`
	EditedAt  time.Time        `json:"editedAt"`
}

func NewMessageEdited(m *domain.Message) MessageEdited {
	return MessageEdited{Type: EventMessageEdited, MessageID: m.ID, Content: m.Content, EditedAt: *m.EditedAt}
}

type MessageDeleted struct {
	Type      EventType        `json:"type"`
	MessageID domain.MessageID `json:"messageId"`
	DeletedAt time.Time        `json:"deletedAt"`
}

func NewMessageDeleted(m *domain.Message) MessageDeleted {
	return MessageDeleted{Type: EventMessageDeleted, MessageID: m.ID, DeletedAt: *m.DeletedAt}
}

// ChatDeleted and MessagesCleared originate from the CRUD service and are only forwarded.
type ChatDeleted struct {
	Type      EventType       `json:"type"`
	ChatID    domain.ChatID   `json:"chatId"`
	DeletedBy domain.UserID   `json:"deletedBy"`
	UserIDs   []domain.UserID `json:"userIds,omitempty"`
}

type MessagesCleared struct {
	Type      EventType     `json:"type"`
	ChatID    domain.ChatID `json:"chatId"`
	ClearedBy domain.UserID `json:"clearedBy"`
}

type Typing struct {
	Type     EventType     `json:"type"`
	ChatID   domain.ChatID `json:"chatId"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username,omitempty"`
}

func NewTyping(chatID domain.ChatID, u *domain.User, typing bool) Typing {
	if !typing {
		return Typing{Type: EventStopTyping, ChatID: chatID, UserID: u.ID}
	}
	return Typing{Type: EventTyping, ChatID: chatID, UserID: u.ID, Username: u.Username}
}

type IncomingCall struct {
	Type     EventType       `json:"type"`
	Caller   domain.Ref      `json:"caller"`
	CallType domain.CallType `json:"callType"`
	Offer    json.RawMessage `json:"offer"`
}

type CallAccepted struct {
	Type   EventType       `json:"type"`
	Answer json.RawMessage `json:"answer"`
	User   domain.Ref      `json:"user"`
}

// CallNotice covers call_rejected and call_ended.
type CallNotice struct {
	Type EventType  `json:"type"`
	User domain.Ref `json:"user"`
}

type ICECandidate struct {
	Type      EventType       `json:"type"`
	Candidate json.RawMessage `json:"candidate"`
	From      domain.UserID   `json:"from"`
}

type CallAnswer struct {
	Type   EventType       `json:"type"`
	Answer json.RawMessage `json:"answer"`
	From   domain.UserID   `json:"from"`
}

// Error carries the error code in "error"; "type" is the envelope discriminator.
type Error struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"error"`
}

func NewError(e *domain.Error) Error {
	return Error{Type: EventError, Message: e.Message, Code: e.Code}
}

type Pong struct {
	Type EventType `json:"type"`
}

package domain

import (
	"slices"
	"time"
)

type MessageID string

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	MessageVoice MessageType = "voice"
)

const DeletedContent = "This message was deleted"

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageVoice:
		return true
	}
	return false
}

type ReadReceipt struct {
	User   UserID    `json:"user"`
	ReadAt time.Time `json:"readAt"`
}

type Reaction struct {
	User  UserID `json:"user"`
	Emoji string `json:"emoji"`
}

type Message struct {
	ID          MessageID     `json:"_id"`
	Sender      UserID        `json:"sender"`
	Chat        ChatID        `json:"chat"`
	Content     string        `json:"content"`
	Type        MessageType   `json:"messageType"`
	FileURL     string        `json:"fileUrl"`
	FileName    string        `json:"fileName"`
	DeliveredTo []UserID      `json:"deliveredTo"`
	ReadBy      []ReadReceipt `json:"readBy"`
	Reactions   []Reaction    `json:"reactions"`
	IsEdited    bool          `json:"isEdited"`
	EditedAt    *time.Time    `json:"editedAt,omitempty"`
	IsDeleted   bool          `json:"isDeleted"`
	DeletedAt   *time.Time    `json:"deletedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// HasRead reports whether uid already holds a read receipt.
func (m *Message) HasRead(uid UserID) bool {
	return slices.ContainsFunc(m.ReadBy, func(r ReadReceipt) bool { return r.User == uid })
}

// MarkRead appends a receipt unless one exists. Returns false on the no-op path.
func (m *Message) MarkRead(uid UserID, at time.Time) bool {
	if m.HasRead(uid) {
		return false
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{User: uid, ReadAt: at})
	return true
}

// MarkDelivered adds users not yet in DeliveredTo and returns the ones actually added.
func (m *Message) MarkDelivered(users []UserID) []UserID {
	var added []UserID
	for _, u := range users {
		if u == m.Sender || slices.Contains(m.DeliveredTo, u) {
			continue
		}
		m.DeliveredTo = append(m.DeliveredTo, u)
		added = append(added, u)
	}
	return added
}

// React sets uid's single reaction, replacing any previous one.
func (m *Message) React(uid UserID, emoji string) {
	m.Unreact(uid)
	m.Reactions = append(m.Reactions, Reaction{User: uid, Emoji: emoji})
}

func (m *Message) Unreact(uid UserID) bool {
	n := len(m.Reactions)
	m.Reactions = slices.DeleteFunc(m.Reactions, func(r Reaction) bool { return r.User == uid })
	return len(m.Reactions) != n
}

func (m *Message) Edit(content string, at time.Time) {
	m.Content = content
	m.IsEdited = true
	m.EditedAt = &at
	m.UpdatedAt = at
}

func (m *Message) SoftDelete(at time.Time) {
	m.Content = DeletedContent
	m.IsDeleted = true
	m.DeletedAt = &at
	m.UpdatedAt = at
}

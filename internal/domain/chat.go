package domain

import "slices"

type ChatID string

// Chat is the authoritative chat record owned by the persistence collaborator.
type Chat struct {
	ID            ChatID    `json:"_id"`
	Name          string    `json:"chatName"`
	IsGroup       bool      `json:"isGroupChat"`
	Users         []UserID  `json:"users"`
	Admin         UserID    `json:"groupAdmin,omitempty"`
	LatestMessage MessageID `json:"latestMessage,omitempty"`
}

func (c *Chat) HasMember(uid UserID) bool {
	return slices.Contains(c.Users, uid)
}

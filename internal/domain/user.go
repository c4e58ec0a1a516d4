// Package domain contains entities and the small invariants they own. No transport here.
package domain

import "time"

const MaxUserIDLen = 64

type UserID string

type User struct {
	ID       UserID    `json:"_id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// Ref is the public view of a user embedded in outbound events.
type Ref struct {
	ID       UserID `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

func (u *User) Ref() Ref {
	return Ref{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

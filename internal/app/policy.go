package app

import (
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose transport refused a frame.
type Policy interface {
	OnBackPressure(chatID domain.ChatID, member *core.Connection) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ChatID, *core.Connection) BackpressureAction {
	return DropFrame
}

// KickPolicy closes slow consumers; their read pump then runs the disconnect path.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.ChatID, *core.Connection) BackpressureAction {
	return KickMember
}

func PolicyFor(name string) Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return DropPolicy{}
}

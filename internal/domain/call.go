package domain

type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallVoice || t == CallVideo
}

type CallState int32

const (
	CallIdle CallState = iota
	CallInitiating
	CallRinging
	CallConnecting
	CallActive
	CallTerminated
)

func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "IDLE"
	case CallInitiating:
		return "INITIATING"
	case CallRinging:
		return "RINGING"
	case CallConnecting:
		return "CONNECTING"
	case CallActive:
		return "ACTIVE"
	case CallTerminated:
		return "TERMINATED"
	}
	return "UNKNOWN"
}

// Relaying reports whether ICE candidates may flow in this state.
func (s CallState) Relaying() bool {
	return s == CallRinging || s == CallConnecting || s == CallActive
}

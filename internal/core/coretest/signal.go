// Package coretest provides an in-memory transport for tests.
package coretest

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

var ErrClosed = errors.New("signal closed")

// Signal records every frame it accepts.
type Signal struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (s *Signal) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *Signal) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Signal) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Events decodes every recorded frame.
func (s *Signal) Events() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.frames))
	for _, f := range s.frames {
		var m map[string]any
		_ = json.Unmarshal(f, &m)
		out = append(out, m)
	}
	return out
}

func (s *Signal) Types() []string {
	evs := s.Events()
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		t, _ := e["type"].(string)
		out = append(out, t)
	}
	return out
}

// Last returns the most recent event, or nil.
func (s *Signal) Last() map[string]any {
	evs := s.Events()
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

// OfType returns the events whose type matches.
func (s *Signal) OfType(t core.EventType) []map[string]any {
	var out []map[string]any
	for _, e := range s.Events() {
		if e["type"] == string(t) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Signal) Reset() {
	s.mu.Lock()
	s.frames = nil
	s.mu.Unlock()
}

// NewConn builds a connection for uid over a recording Signal.
func NewConn(uid domain.UserID) (*core.Connection, *Signal) {
	sig := &Signal{}
	return core.NewConnection(&domain.User{ID: uid, Username: "user-" + string(uid)}, sig), sig
}

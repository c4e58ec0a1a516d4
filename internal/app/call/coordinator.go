// Package call drives point-to-point call negotiation between two users.
//
// A Session exists per unordered user pair from initiate_call until it terminates.
// Offers, answers and candidates are relayed without being inspected.
package call

import (
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

type Session struct {
	Caller  domain.UserID
	Callee  domain.UserID
	Type    domain.CallType
	State   domain.CallState
	Created time.Time
}

// peer returns the other side of the session.
func (s *Session) peer(uid domain.UserID) domain.UserID {
	if uid == s.Caller {
		return s.Callee
	}
	return s.Caller
}

type pair struct{ a, b domain.UserID }

func pairOf(x, y domain.UserID) pair {
	if y < x {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

func callKey(uid domain.UserID) string { return "call:" + string(uid) }

type Options struct {
	// RejectBusy refuses initiate_call when either side already has a live session.
	RejectBusy bool
	Now        func() time.Time
}

type Coordinator struct {
	registry *app.Registry
	locks    *app.KeyMutex
	opts     Options

	mu       sync.RWMutex
	sessions map[pair]*Session
	busy     map[domain.UserID]int
}

func NewCoordinator(registry *app.Registry, locks *app.KeyMutex, opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		registry: registry,
		locks:    locks,
		opts:     opts,
		sessions: make(map[pair]*Session),
		busy:     make(map[domain.UserID]int),
	}
}

func invalidState(s *Session, op string) *domain.Error {
	state := domain.CallIdle
	if s != nil {
		state = s.State
	}
	return domain.NewError(domain.KindConflict, domain.CodeInvalidCallState, "cannot "+op+" a call in state "+state.String())
}

// lock serializes work on both users' call keys. Chat keys are never taken here.
func (c *Coordinator) lock(x, y domain.UserID) func() {
	return c.locks.LockAll(callKey(x), callKey(y))
}

func (c *Coordinator) get(x, y domain.UserID) *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[pairOf(x, y)]
}

func (c *Coordinator) put(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[pairOf(s.Caller, s.Callee)] = s
	c.busy[s.Caller]++
	c.busy[s.Callee]++
}

// discard moves s to TERMINATED and forgets it; the pair may start over afterwards.
func (c *Coordinator) discard(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.State = domain.CallTerminated
	delete(c.sessions, pairOf(s.Caller, s.Callee))
	for _, u := range []domain.UserID{s.Caller, s.Callee} {
		if c.busy[u]--; c.busy[u] <= 0 {
			delete(c.busy, u)
		}
	}
}

func (c *Coordinator) setState(s *Session, st domain.CallState) {
	c.mu.Lock()
	s.State = st
	c.mu.Unlock()
}

func (c *Coordinator) isBusy(uid domain.UserID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy[uid] > 0
}

// forward sends v to uid's live connection and reports whether it was accepted.
func (c *Coordinator) forward(uid domain.UserID, v any) bool {
	conn, ok := c.registry.Lookup(uid)
	if !ok {
		return false
	}
	if err := conn.Send(v); err != nil {
		log.Debug().Err(err).Str("module", "call").Str("user", string(uid)).Msg("forward dropped")
		return false
	}
	return true
}

func (c *Coordinator) Initiate(conn *core.Connection, p core.InitiateCall) *domain.Error {
	caller := conn.UserID()
	if p.To == "" || p.To == caller {
		return domain.NewError(domain.KindValidation, domain.CodeInvalidCall, "invalid call target")
	}
	if !p.CallType.Valid() {
		return domain.NewError(domain.KindValidation, domain.CodeInvalidCall, "unknown call type")
	}

	unlock := c.lock(caller, p.To)
	defer unlock()

	if s := c.get(caller, p.To); s != nil {
		return domain.NewError(domain.KindConflict, domain.CodeCallInProgress, "a call between these users is already in progress")
	}
	if _, ok := c.registry.Lookup(p.To); !ok {
		return domain.NewError(domain.KindNotFound, domain.CodeOffline, "User is offline")
	}
	if c.opts.RejectBusy && (c.isBusy(p.To) || c.isBusy(caller)) {
		return domain.NewError(domain.KindConflict, domain.CodeBusy, "User is busy")
	}

	s := &Session{Caller: caller, Callee: p.To, Type: p.CallType, State: domain.CallInitiating, Created: c.opts.Now()}
	c.put(s)

	ev := core.IncomingCall{Type: core.EventIncomingCall, Caller: conn.User().Ref(), CallType: p.CallType, Offer: p.Offer}
	if !c.forward(p.To, ev) {
		c.discard(s)
		return domain.NewError(domain.KindNotFound, domain.CodeOffline, "User is offline")
	}
	c.setState(s, domain.CallRinging)
	log.Info().Str("module", "call").Str("caller", string(caller)).Str("callee", string(p.To)).Str("type", string(p.CallType)).Msg("ringing")
	return nil
}

// Accept forwards the callee's answer. The session is ACTIVE once the caller got it and
// stays CONNECTING when the caller could not be reached.
func (c *Coordinator) Accept(conn *core.Connection, p core.AcceptCall) *domain.Error {
	callee := conn.UserID()
	unlock := c.lock(callee, p.To)
	defer unlock()

	s := c.get(callee, p.To)
	if s == nil || s.State != domain.CallRinging || s.Callee != callee {
		return invalidState(s, "accept")
	}
	c.setState(s, domain.CallConnecting)

	ev := core.CallAccepted{Type: core.EventCallAccepted, Answer: p.Answer, User: conn.User().Ref()}
	if c.forward(s.Caller, ev) {
		c.setState(s, domain.CallActive)
	}
	log.Info().Str("module", "call").Str("caller", string(s.Caller)).Str("callee", string(callee)).Str("state", s.State.String()).Msg("accepted")
	return nil
}

func (c *Coordinator) Reject(conn *core.Connection, p core.CallPeer) *domain.Error {
	callee := conn.UserID()
	unlock := c.lock(callee, p.To)
	defer unlock()

	s := c.get(callee, p.To)
	if s == nil || s.State != domain.CallRinging || s.Callee != callee {
		return invalidState(s, "reject")
	}
	c.discard(s)
	c.forward(s.Caller, core.CallNotice{Type: core.EventCallRejected, User: conn.User().Ref()})
	log.Info().Str("module", "call").Str("caller", string(s.Caller)).Str("callee", string(callee)).Msg("rejected")
	return nil
}

// End terminates the pair's session from any live state, by either side.
func (c *Coordinator) End(conn *core.Connection, p core.CallPeer) *domain.Error {
	from := conn.UserID()
	unlock := c.lock(from, p.To)
	defer unlock()

	s := c.get(from, p.To)
	if s == nil {
		return invalidState(nil, "end")
	}
	c.discard(s)
	c.forward(s.peer(from), core.CallNotice{Type: core.EventCallEnded, User: conn.User().Ref()})
	log.Info().Str("module", "call").Str("from", string(from)).Str("to", string(p.To)).Msg("ended")
	return nil
}

// Candidate relays an ICE candidate verbatim. Candidates without a relaying session or
// with an unreachable target are dropped silently.
func (c *Coordinator) Candidate(conn *core.Connection, p core.RelayCandidate) {
	from := conn.UserID()
	unlock := c.lock(from, p.To)
	defer unlock()

	s := c.get(from, p.To)
	if s == nil || !s.State.Relaying() {
		log.Debug().Str("module", "call").Str("from", string(from)).Str("to", string(p.To)).Msg("candidate without session dropped")
		return
	}
	c.forward(p.To, core.ICECandidate{Type: core.EventICECandidate, Candidate: p.Candidate, From: from})
}

// Answer relays a later answer between the parties of an accepted call. A callee
// answer that reaches the caller of a CONNECTING session makes it ACTIVE. Answers
// outside an accepted session are dropped silently.
func (c *Coordinator) Answer(conn *core.Connection, p core.RelayAnswer) {
	from := conn.UserID()
	unlock := c.lock(from, p.To)
	defer unlock()

	s := c.get(from, p.To)
	if s == nil || (s.State != domain.CallConnecting && s.State != domain.CallActive) {
		log.Debug().Str("module", "call").Str("from", string(from)).Str("to", string(p.To)).Msg("answer without session dropped")
		return
	}
	if !c.forward(p.To, core.CallAnswer{Type: core.EventCallAnswer, Answer: p.Answer, From: from}) {
		return
	}
	if s.State == domain.CallConnecting && from == s.Callee {
		c.setState(s, domain.CallActive)
	}
}

// State reports the state of the session between x and y, IDLE when there is none.
func (c *Coordinator) State(x, y domain.UserID) domain.CallState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.sessions[pairOf(x, y)]; ok {
		return s.State
	}
	return domain.CallIdle
}

// Sessions returns copies of all live sessions.
func (c *Coordinator) Sessions() []Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, *s)
	}
	return out
}

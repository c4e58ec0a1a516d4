package orch

import (
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

func (o *Orchestrator) dispatchCall(conn *core.Connection, cmd core.Command) *domain.Error {
	switch cmd.Type {
	case core.CmdInitiateCall:
		var p core.InitiateCall
		if de := cmd.Bind(&p); de != nil {
			return domain.NewError(domain.KindValidation, domain.CodeInvalidCall, de.Message)
		}
		return o.Calls.Initiate(conn, p)
	case core.CmdCallAccepted:
		var p core.AcceptCall
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Calls.Accept(conn, p)
	case core.CmdCallRejected:
		var p core.CallPeer
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Calls.Reject(conn, p)
	case core.CmdCallEnded:
		var p core.CallPeer
		if de := cmd.Bind(&p); de != nil {
			return de
		}
		return o.Calls.End(conn, p)
	case core.CmdCallAnswer:
		var p core.RelayAnswer
		if cmd.Bind(&p) == nil {
			o.Calls.Answer(conn, p)
		}
	case core.CmdICECandidate:
		var p core.RelayCandidate
		// Malformed relays are dropped like undeliverable ones.
		if cmd.Bind(&p) == nil {
			o.Calls.Candidate(conn, p)
		}
	}
	return nil
}

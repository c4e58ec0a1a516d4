package call

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/core/coretest"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/stretchr/testify/require"
)

var (
	offer     = json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	answer    = json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	candidate = json.RawMessage(`{"candidate":"candidate:1 1 udp 2122260223 10.0.0.1 5000 typ host","sdpMid":"0"}`)
)

type fixture struct {
	registry *app.Registry
	calls    *Coordinator
}

func newFixture(opts Options) *fixture {
	reg := app.NewRegistry()
	return &fixture{registry: reg, calls: NewCoordinator(reg, app.NewKeyMutex(), opts)}
}

func (f *fixture) connect(uid domain.UserID) (*core.Connection, *coretest.Signal) {
	conn, sig := coretest.NewConn(uid)
	f.registry.Register(conn)
	return conn, sig
}

func TestInitiateOfflineCallee(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, sx := f.connect("x")

	de := f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVideo, Offer: offer})
	req.NotNil(de)
	req.Equal(domain.CodeOffline, de.Code)
	req.Equal(domain.CallIdle, f.calls.State("x", "y"))
	req.Empty(f.calls.Sessions())
	req.Empty(sx.Types())
}

func TestInitiateValidation(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, _ := f.connect("x")
	f.connect("y")

	de := f.calls.Initiate(x, core.InitiateCall{To: "x", CallType: domain.CallVoice, Offer: offer})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCall, de.Code)

	de = f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: "hologram", Offer: offer})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCall, de.Code)
}

func TestFullCall(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, sx := f.connect("x")
	y, sy := f.connect("y")

	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVideo, Offer: offer}))
	req.Equal(domain.CallRinging, f.calls.State("y", "x"))

	incoming := sy.Last()
	req.Equal("incoming_call", incoming["type"])
	req.Equal("video", incoming["callType"])
	req.Equal("x", incoming["caller"].(map[string]any)["_id"])
	req.Equal(map[string]any{"type": "offer", "sdp": "v=0"}, incoming["offer"])

	f.calls.Candidate(x, core.RelayCandidate{To: "y", Candidate: candidate})
	req.Equal("ice_candidate", sy.Last()["type"])
	req.Equal("x", sy.Last()["from"])

	req.Nil(f.calls.Accept(y, core.AcceptCall{To: "x", Answer: answer}))
	req.Equal(domain.CallActive, f.calls.State("x", "y"))
	req.Equal("call_accepted", sx.Last()["type"])
	req.Equal(map[string]any{"type": "answer", "sdp": "v=0"}, sx.Last()["answer"])

	f.calls.Candidate(y, core.RelayCandidate{To: "x", Candidate: candidate})
	req.Equal("ice_candidate", sx.Last()["type"])

	req.Nil(f.calls.End(x, core.CallPeer{To: "y"}))
	req.Equal(domain.CallIdle, f.calls.State("x", "y"))
	req.Equal("call_ended", sy.Last()["type"])
	req.Empty(f.calls.Sessions())
}

func TestRejectThenAccept(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, sx := f.connect("x")
	y, sy := f.connect("y")

	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))
	req.Nil(f.calls.Reject(y, core.CallPeer{To: "x"}))
	req.Equal([]string{"call_rejected"}, sx.Types())
	req.Equal(domain.CallIdle, f.calls.State("x", "y"))

	de := f.calls.Accept(y, core.AcceptCall{To: "x", Answer: answer})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCallState, de.Code)

	sy.Reset()
	f.calls.Candidate(y, core.RelayCandidate{To: "x", Candidate: candidate})
	f.calls.Candidate(x, core.RelayCandidate{To: "y", Candidate: candidate})
	req.Equal([]string{"call_rejected"}, sx.Types())
	req.Empty(sy.Types())

	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))
	req.Equal(domain.CallRinging, f.calls.State("x", "y"))
}

func TestOnlyCalleeMayAnswer(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, _ := f.connect("x")
	y, _ := f.connect("y")
	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))

	de := f.calls.Accept(x, core.AcceptCall{To: "y", Answer: answer})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCallState, de.Code)

	de = f.calls.Reject(x, core.CallPeer{To: "y"})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCallState, de.Code)

	req.Nil(f.calls.Accept(y, core.AcceptCall{To: "x", Answer: answer}))
	de = f.calls.Accept(y, core.AcceptCall{To: "x", Answer: answer})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCallState, de.Code)
}

func TestSecondInitiateForPair(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, _ := f.connect("x")
	y, _ := f.connect("y")
	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))

	de := f.calls.Initiate(y, core.InitiateCall{To: "x", CallType: domain.CallVoice, Offer: offer})
	req.NotNil(de)
	req.Equal(domain.CodeCallInProgress, de.Code)
}

func TestBusyRejection(t *testing.T) {
	req := require.New(t)

	f := newFixture(Options{})
	x, _ := f.connect("x")
	z, _ := f.connect("z")
	f.connect("y")
	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))
	req.Nil(f.calls.Initiate(z, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))
	req.Len(f.calls.Sessions(), 2)

	f = newFixture(Options{RejectBusy: true})
	x, _ = f.connect("x")
	z, sz := f.connect("z")
	_, sy := f.connect("y")
	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))
	de := f.calls.Initiate(z, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer})
	req.NotNil(de)
	req.Equal(domain.CodeBusy, de.Code)
	req.Len(sy.OfType(core.EventIncomingCall), 1)
	req.Empty(sz.Types())

	req.Nil(f.calls.End(x, core.CallPeer{To: "y"}))
	req.Nil(f.calls.Initiate(z, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))
}

func TestAcceptWithUnreachableCaller(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, _ := f.connect("x")
	y, sy := f.connect("y")
	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer}))

	f.registry.Unregister("x", x)
	req.Nil(f.calls.Accept(y, core.AcceptCall{To: "x", Answer: answer}))
	req.Equal(domain.CallConnecting, f.calls.State("x", "y"))

	sy.Reset()
	f.calls.Candidate(y, core.RelayCandidate{To: "x", Candidate: candidate})
	req.Empty(sy.Types())

	req.Nil(f.calls.End(y, core.CallPeer{To: "x"}))
	req.Equal(domain.CallIdle, f.calls.State("x", "y"))
}

func TestFailedRingTerminates(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, _ := f.connect("x")
	_, sy := f.connect("y")
	sy.Close()

	de := f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVoice, Offer: offer})
	req.NotNil(de)
	req.Equal(domain.CodeOffline, de.Code)
	req.Equal(domain.CallIdle, f.calls.State("x", "y"))
}

func TestEndWithoutSession(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, _ := f.connect("x")

	de := f.calls.End(x, core.CallPeer{To: "y"})
	req.NotNil(de)
	req.Equal(domain.CodeInvalidCallState, de.Code)
}

func TestAnswerRelay(t *testing.T) {
	req := require.New(t)
	f := newFixture(Options{})
	x, sx := f.connect("x")
	y, sy := f.connect("y")

	// Not yet accepted: dropped.
	req.Nil(f.calls.Initiate(x, core.InitiateCall{To: "y", CallType: domain.CallVideo, Offer: offer}))
	sx.Reset()
	f.calls.Answer(y, core.RelayAnswer{To: "x", Answer: answer})
	req.Empty(sx.Types())

	f.registry.Unregister("x", x)
	req.Nil(f.calls.Accept(y, core.AcceptCall{To: "x", Answer: answer}))
	req.Equal(domain.CallConnecting, f.calls.State("x", "y"))

	// The caller is back; a resent answer completes the handshake.
	f.registry.Register(x)
	f.calls.Answer(y, core.RelayAnswer{To: "x", Answer: answer})
	req.Equal(domain.CallActive, f.calls.State("x", "y"))
	got := sx.Last()
	req.Equal("call_answer", got["type"])
	req.Equal("y", got["from"])
	req.Equal(map[string]any{"type": "answer", "sdp": "v=0"}, got["answer"])

	f.calls.Answer(x, core.RelayAnswer{To: "y", Answer: answer})
	req.Equal("call_answer", sy.Last()["type"])
	req.Equal("x", sy.Last()["from"])
}

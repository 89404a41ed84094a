package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
)

// Dispatch handles one parsed server message and reports whether the
// generator's work is complete. It may call g.enqueue to schedule more
// outbound bytes (e.g. a PasswordMessage answering an auth challenge).
type Dispatch func(g *Generator, msg *wire.Message) (done bool, err error)

// Generator is the PQ generator of spec §4.3: a resumable computation
// interleaved with an external readiness reactor, shared by both waiting
// strategies. One Generator drives one leg of the protocol to completion —
// the startup/authentication handshake, or one query's request/response
// cycle — and is discarded afterwards.
type Generator struct {
	transport Transport
	state     *State
	reader    *wire.Reader
	dispatch  Dispatch

	outbound []byte
	recvBuf  []byte

	results []Result
	done    bool
	err     error
}

// NewGenerator constructs a Generator that will send initialOutbound and
// then hand every parsed incoming message to dispatch until dispatch
// reports completion.
func NewGenerator(transport Transport, state *State, initialOutbound []byte, dispatch Dispatch) *Generator {
	return &Generator{
		transport: transport,
		state:     state,
		reader:    wire.NewReader(),
		dispatch:  dispatch,
		outbound:  initialOutbound,
		recvBuf:   make([]byte, 32*1024),
	}
}

// enqueue schedules more bytes to be sent on the next writable suspension.
// Called by a Dispatch implementation in reaction to an incoming message
// (e.g. answering an authentication challenge).
func (g *Generator) enqueue(b []byte) {
	g.outbound = append(g.outbound, b...)
}

// Results returns the results accumulated so far. Meaningful only once Step
// has reported done.
func (g *Generator) Results() []Result { return g.results }

// Step advances the generator using the readiness signal the caller
// observed. ready is not consulted: every call attempts whatever the
// current outbound/inbound state calls for (send pending bytes, then a
// non-blocking receive), exactly as spec §4.3 describes the alternation,
// and a would-block result simply suspends again. It returns
// the descriptor to watch, the next readiness the caller should wait for,
// whether the generator has finished, and an error if it finished abnormally.
//
// Cancellation: the caller may simply stop calling Step at any suspension
// point. Per spec §4.3/§5 doing so without issuing an out-of-band Cancel
// desynchronizes the server's reply stream; Poison must then be called so
// the owning connection refuses further work.
func (g *Generator) Step(ready Ready) (fd uintptr, wait Wait, done bool, err error) {
	if g.done {
		return g.transport.Fd(), WaitRead, true, g.err
	}

	if len(g.outbound) > 0 {
		n, sendErr := g.transport.Send(g.outbound)
		if errors.Is(sendErr, ErrWouldBlock) {
			return g.transport.Fd(), WaitWrite, false, nil
		}
		if sendErr != nil {
			return g.finish(pqerr.NewOperationalError("protocol: send failed: %w", sendErr))
		}

		g.outbound = g.outbound[n:]
		if len(g.outbound) > 0 {
			return g.transport.Fd(), WaitWrite, false, nil
		}
	}

	n, recvErr := g.transport.Recv(g.recvBuf)
	if errors.Is(recvErr, ErrWouldBlock) {
		return g.transport.Fd(), WaitRead, false, nil
	}
	if errors.Is(recvErr, io.EOF) {
		return g.finish(pqerr.NewOperationalError("protocol: connection closed by peer"))
	}
	if recvErr != nil {
		return g.finish(pqerr.NewOperationalError("protocol: recv failed: %w", recvErr))
	}

	g.reader.Feed(g.recvBuf[:n])

	for {
		msg, ok, parseErr := g.reader.Next()
		if parseErr != nil {
			return g.finish(pqerr.NewOperationalError("protocol: malformed message: %w", parseErr))
		}
		if !ok {
			break
		}

		finished, dispatchErr := g.dispatch(g, msg)
		if dispatchErr != nil {
			return g.finish(dispatchErr)
		}
		if finished {
			return g.finish(nil)
		}
	}

	return g.transport.Fd(), WaitRead, false, nil
}

func (g *Generator) finish(err error) (uintptr, Wait, bool, error) {
	g.done = true
	g.err = err
	return g.transport.Fd(), WaitRead, true, err
}

// Poison marks the owning connection's state Failed, reflecting that its
// server reply stream is no longer synchronized with the client (spec §5:
// cancellation without an out-of-band Cancel request poisons the
// connection).
func (s *State) Poison() { s.Phase = Failed }

// baseQueryDispatch implements the message handling shared by the simple-
// and extended-query dispatchers: row/command accounting and the terminal
// ReadyForQuery check. simple and extended query dispatch differ only in
// which messages they additionally recognize (e.g. ParseComplete,
// BindComplete only appear for extended queries) and both funnel through
// this for the common ones. onParam, when non-nil, is called for every
// ParameterStatus seen mid-query — e.g. the acknowledgment of a `SET
// client_encoding` — so the facade can re-resolve its codec (spec §3's
// "the codec is reread after any SET client_encoding acknowledgment").
func baseQueryDispatch(state *State, results *resultBuilder, onParam func(name, value string), msg *wire.Message) (handled bool, done bool, err error) {
	switch msg.Type {
	case wire.ServerRowDescription:
		results.onRowDescription(msg.RowDescr)
		state.Phase = RowsPending
		return true, false, nil
	case wire.ServerDataRow:
		results.onDataRow(msg.DataRow)
		return true, false, nil
	case wire.ServerCommandComplete:
		results.onCommandComplete(msg.CommandTag)
		return true, false, nil
	case wire.ServerEmptyQueryResponse:
		results.onEmptyQuery()
		return true, false, nil
	case wire.ServerCopyInResponse:
		results.onCopyIn()
		state.Phase = CopyIn
		return true, false, nil
	case wire.ServerCopyOutResponse:
		results.onCopyOut()
		state.Phase = CopyOut
		return true, false, nil
	case wire.ServerCopyBothResponse:
		results.onCopyBoth()
		state.Phase = CopyBoth
		return true, false, nil
	case wire.ServerErrorResponse:
		results.onError(msg.ErrorOrNotice)
		state.OnErrorResponse()
		return true, false, nil
	case wire.ServerNoticeResponse:
		// Notices are diagnostic-only; spec's data model does not surface
		// them through Result. Dropped here, not treated as an error.
		return true, false, nil
	case wire.ServerParameterStatus:
		if onParam != nil {
			onParam(msg.ParamStatus.Name, msg.ParamStatus.Value)
		}
		return true, false, nil
	case wire.ServerBackendKeyData:
		return true, false, nil
	case wire.ServerReadyForQuery:
		state.OnReadyForQuery(msg.ReadyForQuery.Status)
		return true, true, nil
	}

	return false, false, nil
}

// NewSimpleQueryDispatch builds the Dispatch for a simple-query message
// (spec §4.9 step 3: used when execute() is called without parameters).
// onParam is called for every ParameterStatus seen during the query; pass
// nil to ignore them.
func NewSimpleQueryDispatch(state *State, onParam func(name, value string)) (Dispatch, *[]Result) {
	var rb resultBuilder
	var out []Result

	d := func(g *Generator, msg *wire.Message) (bool, error) {
		handled, done, err := baseQueryDispatch(state, &rb, onParam, msg)
		if err != nil {
			return false, err
		}
		if !handled {
			return false, fmt.Errorf("protocol: unexpected message %s during simple query", msg.Type)
		}
		if done {
			out = rb.results
			g.results = rb.results
		}
		return done, nil
	}

	return d, &out
}

// NewExtendedQueryDispatch builds the Dispatch for the Parse/Bind/Describe/
// Execute/Sync sequence (spec §4.9 step 3: used whenever execute() is
// called with parameters). onParam is called for every ParameterStatus seen
// during the query; pass nil to ignore them.
func NewExtendedQueryDispatch(state *State, onParam func(name, value string)) Dispatch {
	var rb resultBuilder

	return func(g *Generator, msg *wire.Message) (bool, error) {
		switch msg.Type {
		case wire.ServerParseComplete, wire.ServerBindComplete, wire.ServerNoData,
			wire.ServerParameterDescription, wire.ServerPortalSuspended:
			return false, nil
		}

		handled, done, err := baseQueryDispatch(state, &rb, onParam, msg)
		if err != nil {
			return false, err
		}
		if !handled {
			return false, fmt.Errorf("protocol: unexpected message %s during extended query", msg.Type)
		}
		if done {
			g.results = rb.results
		}
		return done, nil
	}
}

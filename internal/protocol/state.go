// Package protocol implements the connection's protocol state machine and
// the PQ generator: the resumable I/O coroutine that drives the
// frontend/backend message exchange to completion, one suspension per
// readiness boundary, independent of whether the caller waits on it
// synchronously or cooperatively.
package protocol

import "github.com/lowlevl/pqcore/internal/wire"

// Phase is the connection's protocol phase, per spec §4.2:
// Disconnected -> Connecting -> Authenticating -> Ready ->
// Busy{Simple|Extended} -> {RowsPending|CopyIn|CopyOut|CopyBoth} -> Ready
// | Failed | Terminated.
type Phase int

const (
	Disconnected Phase = iota
	Connecting
	Authenticating
	Ready
	BusySimple
	BusyExtended
	RowsPending
	CopyIn
	CopyOut
	CopyBoth
	Failed
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Authenticating:
		return "authenticating"
	case Ready:
		return "ready"
	case BusySimple:
		return "busy(simple)"
	case BusyExtended:
		return "busy(extended)"
	case RowsPending:
		return "rows-pending"
	case CopyIn:
		return "copy-in"
	case CopyOut:
		return "copy-out"
	case CopyBoth:
		return "copy-both"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TransactionStatus is re-exported from wire for callers that only need the
// protocol package.
type TransactionStatus = wire.TransactionStatus

const (
	TxIdle    = wire.TxIdle
	TxInBlock = wire.TxInBlock
	TxFailed  = wire.TxFailed
)

// State tracks a connection's protocol phase and the orthogonal
// transaction status carried by the most recent ReadyForQuery.
type State struct {
	Phase  Phase
	TxStat TransactionStatus

	// inQueryError records whether the in-flight query has already seen an
	// ErrorResponse. It is cleared by OnReadyForQuery, which takes the
	// transaction status from the server's message, not from this flag.
	inQueryError bool
}

// NewState returns a fresh, disconnected State.
func NewState() *State {
	return &State{Phase: Disconnected, TxStat: TxIdle}
}

// OnErrorResponse transitions the state in response to a server
// ErrorResponse: per spec §4.2 an error mid-query does not close the
// connection; it only sets inQueryError, and the transaction status is
// updated by the following ReadyForQuery. The phase itself does not
// move to Failed here — Failed is reserved for unrecoverable transport-level
// poisoning (see protocol.Generator.Poison).
func (s *State) OnErrorResponse() {
	s.inQueryError = true
}

// OnReadyForQuery applies an incoming ReadyForQuery message: it records the
// transaction status the server reported and returns the connection to
// Ready.
func (s *State) OnReadyForQuery(status TransactionStatus) {
	s.TxStat = status
	s.Phase = Ready
	s.inQueryError = false
}

// Busy transitions the state into the busy phase for the given query kind
// ahead of sending it.
func (s *State) Busy(extended bool) {
	if extended {
		s.Phase = BusyExtended
	} else {
		s.Phase = BusySimple
	}
}

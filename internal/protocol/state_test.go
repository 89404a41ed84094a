package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStateStartsDisconnected(t *testing.T) {
	s := NewState()
	assert.Equal(t, Disconnected, s.Phase)
	assert.Equal(t, TxIdle, s.TxStat)
}

func TestBusyTransitionsByQueryKind(t *testing.T) {
	s := NewState()

	s.Busy(false)
	assert.Equal(t, BusySimple, s.Phase)

	s.Busy(true)
	assert.Equal(t, BusyExtended, s.Phase)
}

func TestOnReadyForQueryReturnsToReady(t *testing.T) {
	s := NewState()
	s.Busy(false)
	s.OnErrorResponse()

	s.OnReadyForQuery(TxFailed)

	assert.Equal(t, Ready, s.Phase)
	assert.Equal(t, TxFailed, s.TxStat)
}

func TestPoisonMarksFailed(t *testing.T) {
	s := NewState()
	s.Poison()
	assert.Equal(t, Failed, s.Phase)
}

func TestPhaseStringHandlesEveryConstant(t *testing.T) {
	for _, p := range []Phase{
		Disconnected, Connecting, Authenticating, Ready,
		BusySimple, BusyExtended, RowsPending,
		CopyIn, CopyOut, CopyBoth, Failed, Terminated,
	} {
		assert.NotEqual(t, "unknown", p.String())
	}
}

package protocol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowlevl/pqcore/internal/testtransport"
	"github.com/lowlevl/pqcore/internal/wire"
)

// spinReactor is a minimal Reactor for tests: it busy-waits briefly instead
// of actually blocking on a descriptor, mirroring SpinPoller's role for the
// synchronous strategy.
type spinReactor struct{}

func (spinReactor) Await(ctx context.Context, fd uintptr, wait Wait) (Ready, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(time.Microsecond):
	}

	switch wait {
	case WaitRead:
		return ReadyRead, nil
	case WaitWrite:
		return ReadyWrite, nil
	default:
		return ReadyReadWrite, nil
	}
}

func TestRunCooperativeCompletesStartup(t *testing.T) {
	client, serverConn := testtransport.NewPipePair()
	server := testtransport.NewFakeServer(serverConn)

	state := NewState()
	dispatch, outcome := NewStartupDispatch(state, Credentials{Username: "alice"})
	gen := NewGenerator(client, state, wire.FrameStartup(map[string]string{"user": "alice"}), dispatch)

	server.AuthenticationOK()
	server.ReadyForQuery('I')

	_, err := RunCooperative(context.Background(), gen, spinReactor{})
	require.NoError(t, err)
	assert.Equal(t, Ready, state.Phase)
	assert.Equal(t, int32(0), outcome.ProcessID)
}

func TestRunCooperativePoisonsOnContextCancellation(t *testing.T) {
	client, _ := testtransport.NewPipePair()

	state := NewState()
	state.Phase = Ready
	state.Busy(false)

	dispatch, _ := NewSimpleQueryDispatch(state, nil)
	gen := NewGenerator(client, state, wire.FrameQuery("select 1"), dispatch)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
	defer cancel()

	_, err := RunCooperative(ctx, gen, spinReactor{})
	assert.Error(t, err)
	assert.Equal(t, Failed, state.Phase)
}

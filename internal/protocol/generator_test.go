package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowlevl/pqcore/internal/testtransport"
	"github.com/lowlevl/pqcore/internal/wire"
)

func TestStartupHandshakeAuthenticationOK(t *testing.T) {
	client, serverConn := testtransport.NewPipePair()
	server := testtransport.NewFakeServer(serverConn)

	state := NewState()
	dispatch, outcome := NewStartupDispatch(state, Credentials{Username: "alice", Database: "db"})
	gen := NewGenerator(client, state, wire.FrameStartup(map[string]string{"user": "alice"}), dispatch)

	server.AuthenticationOK()
	server.ParameterStatus("server_version", "16.0")
	server.BackendKeyData(42, 99)
	server.ReadyForQuery('I')

	_, err := RunBlocking(gen, SpinPoller{Interval: time.Microsecond}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, Ready, state.Phase)
	assert.Equal(t, "16.0", outcome.Parameters["server_version"])
	assert.Equal(t, int32(42), outcome.ProcessID)
	assert.Equal(t, int32(99), outcome.SecretKey)
}

func TestSimpleQueryTuplesOK(t *testing.T) {
	client, serverConn := testtransport.NewPipePair()
	server := testtransport.NewFakeServer(serverConn)

	state := NewState()
	state.Phase = Ready
	state.Busy(false)

	dispatch, resultsPtr := NewSimpleQueryDispatch(state, nil)
	gen := NewGenerator(client, state, wire.FrameQuery("select 1"), dispatch)

	server.RowDescription([]string{"?column?"}, []uint32{23})
	server.DataRow([][]byte{[]byte("1")})
	server.CommandComplete("SELECT 1")
	server.ReadyForQuery('I')

	_, err := RunBlocking(gen, SpinPoller{Interval: time.Microsecond}, time.Second)
	require.NoError(t, err)

	results := *resultsPtr
	require.Len(t, results, 2)
	assert.Equal(t, StatusTuplesOK, results[0].Status)
	assert.Equal(t, "?column?", results[0].Descriptor.Fields[0].Name)
	assert.Equal(t, "1", string(results[0].Rows[0].Values[0]))
	assert.Equal(t, StatusCommandOK, results[1].Status)
	assert.Equal(t, "SELECT 1", results[1].CommandTag)
}

func TestSimpleQueryErrorResponsePoisonsOnTimeoutOnly(t *testing.T) {
	client, serverConn := testtransport.NewPipePair()
	server := testtransport.NewFakeServer(serverConn)

	state := NewState()
	state.Phase = Ready
	state.Busy(false)

	dispatch, resultsPtr := NewSimpleQueryDispatch(state, nil)
	gen := NewGenerator(client, state, wire.FrameQuery("select 1/0"), dispatch)

	server.ErrorResponse("ERROR", "22012", "division by zero")
	server.ReadyForQuery('I')

	_, err := RunBlocking(gen, SpinPoller{Interval: time.Microsecond}, time.Second)
	require.NoError(t, err)

	results := *resultsPtr
	require.Len(t, results, 1)
	assert.Equal(t, StatusFatalError, results[0].Status)
	assert.Error(t, results[0].Err)
	// An in-query ErrorResponse does not itself poison the connection.
	assert.NotEqual(t, Failed, state.Phase)
}

func TestRunBlockingPoisonsOnTimeout(t *testing.T) {
	client, _ := testtransport.NewPipePair()

	state := NewState()
	state.Phase = Ready
	state.Busy(false)

	dispatch, _ := NewSimpleQueryDispatch(state, nil)
	gen := NewGenerator(client, state, wire.FrameQuery("select 1"), dispatch)

	// No server response is ever written, so this must time out.
	_, err := RunBlocking(gen, SpinPoller{Interval: time.Millisecond}, 5*time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, Failed, state.Phase)
}

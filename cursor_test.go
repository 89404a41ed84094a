package pqcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowlevl/pqcore/internal/protocol"
)

func TestCursorExecuteWithPositionalArgs(t *testing.T) {
	conn, server := connectOverFakeServer(t)
	cur := conn.Cursor()

	done := make(chan *Cursor, 1)
	errCh := make(chan error, 1)
	go func() {
		result, err := cur.Execute(context.Background(), "select * from users where id = %s", int32(1))
		if err != nil {
			errCh <- err
			return
		}
		done <- result
	}()

	time.Sleep(5 * time.Millisecond)
	server.ParseComplete()
	server.BindComplete()
	server.RowDescription([]string{"id"}, []uint32{23})
	server.DataRow([][]byte{[]byte("1")})
	server.CommandComplete("SELECT 1")
	server.ReadyForQuery('I')

	select {
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case result := <-done:
		row, ok, err := result.Fetchone()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int32(1), row[0])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Execute")
	}
}

func TestCursorExecuteArgCountMismatch(t *testing.T) {
	conn, _ := connectOverFakeServer(t)
	cur := conn.Cursor()

	_, err := cur.Execute(context.Background(), "select %s, %s", 1)
	assert.Error(t, err)
}

func TestCursorExecuteNamed(t *testing.T) {
	conn, server := connectOverFakeServer(t)
	cur := conn.Cursor()

	done := make(chan *Cursor, 1)
	errCh := make(chan error, 1)
	go func() {
		result, err := cur.ExecuteNamed(context.Background(),
			"select * from users where id = %(id)s", map[string]any{"id": int32(5)})
		if err != nil {
			errCh <- err
			return
		}
		done <- result
	}()

	time.Sleep(5 * time.Millisecond)
	server.ParseComplete()
	server.BindComplete()
	server.CommandComplete("SELECT 0")
	server.ReadyForQuery('I')

	select {
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case result := <-done:
		assert.Equal(t, protocol.StatusCommandOK, result.Current().Status)
		assert.False(t, result.NextSet())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ExecuteNamed")
	}
}

func TestClassifyResultsRejectsCopy(t *testing.T) {
	conn, _ := connectOverFakeServer(t)
	cur := conn.Cursor()

	_, err := cur.classifyResults([]protocol.Result{{Status: protocol.StatusCopyIn}})
	require.Error(t, err)
	assert.Equal(t, KindProgramming, GetKind(err))
}

func TestNamedCursorDeclareIsUnimplemented(t *testing.T) {
	conn, _ := connectOverFakeServer(t)
	cur := conn.Cursor()

	nc := &NamedCursor{Name: "c1"}
	err := nc.Declare(context.Background(), cur, "select 1")
	assert.Error(t, err)
}

// Package pqcore is the Cursor/Connection Facade of the driver core (spec
// §4.9): the one package application code is expected to import directly.
// It wires the Wire Codec, Protocol State Machine, PQ Generator, Waiting
// Strategies, Adapter Registry, Transformer, and Query Preparer together
// into Connect/Execute/Commit/Rollback/Close.
package pqcore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/text/encoding"

	"github.com/lowlevl/pqcore/internal/adapt"
	"github.com/lowlevl/pqcore/internal/protocol"
	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
)

// Connection is one client-side connection to a Postgres backend: the
// facade around the protocol state machine and PQ generator. At most one
// PQ Generator executes against a Connection at a time (spec §5), enforced
// by excl, a binary semaphore rather than a mutex so both waiting
// strategies can acquire it with the same call (blocking or
// context-cancelable).
type Connection struct {
	logger    *slog.Logger
	transport Transport
	creds     protocol.Credentials
	reactor   protocol.Reactor
	poller    protocol.Poller
	timeout   time.Duration

	pendingComposites []adapt.CompositeTypeInfo

	excl *semaphore.Weighted

	state      *protocol.State
	registry   *adapt.Registry
	encoding   string
	codec      encoding.Encoding
	parameters map[string]string
	processID  int32
	secretKey  int32
}

var globalRegistry = func() *adapt.Registry {
	r := adapt.NewRegistry()
	adapt.RegisterBuiltins(r)
	return r
}()

// Connect dials through the configured Transport and drives the connection
// through the startup/authentication handshake to Ready (spec §4.2, §4.3).
func Connect(ctx context.Context, opts ...ConnOption) (*Connection, error) {
	c := &Connection{
		logger:     slog.Default(),
		excl:       semaphore.NewWeighted(1),
		state:      protocol.NewState(),
		registry:   globalRegistry.Child(),
		parameters: map[string]string{},
		encoding:   "UTF8",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		return nil, pqerr.NewProgrammingError("pqcore: Connect requires WithTransport")
	}

	for _, info := range c.pendingComposites {
		adapt.RegisterComposite(c.registry, info)
	}

	c.state.Phase = protocol.Connecting

	params := map[string]string{
		"user": c.creds.Username,
	}
	if c.creds.Database != "" {
		params["database"] = c.creds.Database
	}

	dispatch, outcome := protocol.NewStartupDispatch(c.state, c.creds)
	startup := wire.FrameStartup(params)

	gen := protocol.NewGenerator(c.transport, c.state, startup, dispatch)
	if _, err := c.run(ctx, gen); err != nil {
		c.state.Phase = protocol.Failed
		return nil, err
	}

	c.processID = outcome.ProcessID
	c.secretKey = outcome.SecretKey
	c.parameters = outcome.Parameters

	if enc, ok := outcome.Parameters["client_encoding"]; ok {
		c.applyParameterStatus("client_encoding", enc)
	}

	c.logger.Debug("connection established", "processID", c.processID, "parameters", c.parameters)
	return c, nil
}

// run acquires the exclusion semaphore and drives gen to completion with
// whichever waiting strategy was configured (spec §4.4): cooperative if a
// Reactor was supplied, synchronous otherwise.
func (c *Connection) run(ctx context.Context, gen *protocol.Generator) ([]protocol.Result, error) {
	if err := c.excl.Acquire(ctx, 1); err != nil {
		return nil, pqerr.NewOperationalError("pqcore: %w", err)
	}
	defer c.excl.Release(1)

	if c.reactor != nil {
		return protocol.RunCooperative(ctx, gen, c.reactor)
	}

	return protocol.RunBlocking(gen, c.poller, c.timeout)
}

// Close terminates the connection by sending Terminate and releasing the
// Transport. It does not wait for a reply, matching the wire protocol's
// Terminate semantics.
func (c *Connection) Close() error {
	if c.state.Phase == protocol.Terminated || c.state.Phase == protocol.Disconnected {
		return nil
	}

	_, _ = c.transport.Send(wire.FrameTerminate())
	c.state.Phase = protocol.Terminated
	return c.transport.Close()
}

// Cursor returns a new Cursor bound to this connection, deriving its own
// adapter-registry scope per spec §4.5.
func (c *Connection) Cursor() *Cursor {
	return newCursor(c)
}

// Commit executes COMMIT on an implicit cursor. A no-op, matching Postgres
// semantics, when the connection is not currently inside a transaction
// block.
func (c *Connection) Commit(ctx context.Context) error {
	if c.state.TxStat == protocol.TxIdle {
		return nil
	}
	return c.simpleExec(ctx, "COMMIT")
}

// Rollback executes ROLLBACK on an implicit cursor.
func (c *Connection) Rollback(ctx context.Context) error {
	return c.simpleExec(ctx, "ROLLBACK")
}

func (c *Connection) simpleExec(ctx context.Context, sql string) error {
	cur := c.Cursor()
	_, err := cur.Execute(ctx, sql)
	return err
}

// TransactionStatus reports the transaction status from the most recent
// ReadyForQuery (spec §4.2's orthogonal TransactionStatus).
func (c *Connection) TransactionStatus() protocol.TransactionStatus { return c.state.TxStat }

// Phase reports the connection's current protocol phase.
func (c *Connection) Phase() protocol.Phase { return c.state.Phase }

// Parameter returns the most recently reported value of a server
// parameter (spec §4.2's ParameterStatus bookkeeping), such as
// "server_version" or "client_encoding".
func (c *Connection) Parameter(name string) (string, bool) {
	v, ok := c.parameters[name]
	return v, ok
}

// Cancel issues an out-of-band cancel request for this connection's
// in-flight query over a second, transient transport (spec §4.2/§5). The
// caller supplies a freshly dialed Transport to the same server/port,
// since a cancel request is sent on its own short-lived connection, never
// reused, and never replied to.
func Cancel(cancelTransport Transport, processID, secretKey int32) error {
	_, err := cancelTransport.Send(wire.FrameCancelRequest(processID, secretKey))
	if err != nil {
		return pqerr.NewOperationalError("pqcore: cancel request failed: %w", err)
	}

	return cancelTransport.Close()
}

// ProcessID and SecretKey identify the cancel key issued at startup,
// needed by a caller that wants to build its own Cancel call.
func (c *Connection) ProcessID() int32 { return c.processID }
func (c *Connection) SecretKey() int32 { return c.secretKey }

// Encoding returns the connection's current client_encoding name, as last
// reported by the server (spec §6: Connection.encoding).
func (c *Connection) Encoding() string { return c.encoding }

// SetClientEncoding executes `SET client_encoding` and waits for the
// server's acknowledgment (spec §6: Connection.set_client_encoding). The
// codec used to transcode text columns is re-resolved from that
// acknowledging ParameterStatus, not from name directly, so the connection
// always reflects what the server actually applied.
func (c *Connection) SetClientEncoding(ctx context.Context, name string) error {
	escaped := strings.ReplaceAll(name, "'", "''")
	_, err := c.Cursor().Execute(ctx, fmt.Sprintf("SET client_encoding TO '%s'", escaped))
	return err
}

// applyParameterStatus records a ParameterStatus value and, for
// client_encoding, re-resolves the connection's text codec and installs it
// as a connection-scoped override of the built-in text dumper/loader (spec
// §3's "the codec is reread after any SET client_encoding acknowledgment").
// Passed as the onParam callback to every query dispatch, so this fires
// whether the parameter changed at startup or mid-session.
func (c *Connection) applyParameterStatus(name, value string) {
	c.parameters[name] = value
	if name != "client_encoding" {
		return
	}

	c.encoding = value

	codec, err := resolveEncoding(value)
	if err != nil {
		c.logger.Warn("pqcore: unresolvable client_encoding, text columns pass through as raw bytes", "encoding", value, "error", err)
		return
	}

	c.codec = codec
	adapt.RegisterTextCodec(c.registry, codec)
}

package pqcore

import (
	"log/slog"
	"time"

	"github.com/lowlevl/pqcore/internal/adapt"
	"github.com/lowlevl/pqcore/internal/protocol"
)

// ConnOption configures a Connection before it dials, following the
// teacher's own options-functions pattern (options.go's OptionFn).
type ConnOption func(*Connection)

// WithLogger sets the *slog.Logger used for the connection's debug/error
// traces. Defaults to slog.Default() when not supplied.
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *Connection) {
		c.logger = logger
	}
}

// WithTransport sets the Transport the connection dials through. Required —
// Connect returns a ProgrammingError if none is set, since real socket
// construction is out of scope for this module (spec §6).
func WithTransport(t Transport) ConnOption {
	return func(c *Connection) {
		c.transport = t
	}
}

// WithCredentials sets the username/password/database the startup
// handshake answers the server's authentication challenge with.
func WithCredentials(username, password, database string) ConnOption {
	return func(c *Connection) {
		c.creds = protocol.Credentials{Username: username, Password: password, Database: database}
	}
}

// WithCooperativeWaiting selects the cooperative-concurrency waiting
// strategy (spec §4.4), driving every blocking call on reactor instead of
// the synchronous Poller strategy used by default.
func WithCooperativeWaiting(reactor protocol.Reactor) ConnOption {
	return func(c *Connection) {
		c.reactor = reactor
	}
}

// WithSyncPoller overrides the synchronous waiting strategy's Poller.
// Defaults to protocol.SpinPoller{} when not supplied.
func WithSyncPoller(p protocol.Poller) ConnOption {
	return func(c *Connection) {
		c.poller = p
	}
}

// WithTimeout bounds the total time the synchronous waiting strategy spends
// driving one startup handshake or one query before failing the call. Zero
// (the default) means wait forever.
func WithTimeout(d time.Duration) ConnOption {
	return func(c *Connection) {
		c.timeout = d
	}
}

// WithComposite registers a composite/row type on this connection's
// adapter registry scope (spec §4.8), ahead of any cursor derived from it
// picking it up.
func WithComposite(info adapt.CompositeTypeInfo) ConnOption {
	return func(c *Connection) {
		c.pendingComposites = append(c.pendingComposites, info)
	}
}

// Package pqerr implements the driver's error taxonomy: the exhaustive set
// of error kinds a caller of the facade can observe, and the decorators used
// to attach Postgres-specific detail (SQLSTATE, severity, hint, detail,
// constraint name) to a plain Go error without inventing a new exception
// hierarchy per error site.
package pqerr

// Kind classifies where and why an error originated. It never names a
// specific driver language; it names the failure category itself.
type Kind string

const (
	// KindOperational covers transport failure, a closed connection,
	// authentication failure, or a cancel performed without reconnecting.
	KindOperational Kind = "operational"
	// KindInterface covers misuse of the cursor/connection lifecycle.
	KindInterface Kind = "interface"
	// KindProgramming covers a malformed query, an illegal placeholder
	// style, issuing COPY through Execute, or an unknown conninfo key.
	KindProgramming Kind = "programming"
	// KindDatabase covers a server-side error surfaced via ErrorResponse;
	// it is always accompanied by a SQLSTATE code.
	KindDatabase Kind = "database"
	// KindInternal covers states the driver itself should never produce,
	// such as the PQ generator returning zero results.
	KindInternal Kind = "internal"
)

// WithKind decorates err with a Kind. GetKind returns the empty Kind for an
// error that carries none.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}

	return &withKind{cause: err, kind: kind}
}

// GetKind returns the Kind attached to err, walking the Unwrap chain.
func GetKind(err error) Kind {
	for err != nil {
		if w, ok := err.(*withKind); ok {
			return w.kind
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}

		err = u.Unwrap()
	}

	return ""
}

type withKind struct {
	cause error
	kind  Kind
}

func (w *withKind) Error() string { return w.cause.Error() }
func (w *withKind) Unwrap() error { return w.cause }

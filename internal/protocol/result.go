package protocol

import (
	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
)

// ResultStatus classifies one element of the List<Result> the PQ generator
// returns, per spec §4.9 step 5.
type ResultStatus int

const (
	StatusTuplesOK ResultStatus = iota
	StatusCommandOK
	StatusEmptyQuery
	StatusCopyIn
	StatusCopyOut
	StatusCopyBoth
	StatusFatalError
)

func (s ResultStatus) String() string {
	switch s {
	case StatusTuplesOK:
		return "TuplesOk"
	case StatusCommandOK:
		return "CommandOk"
	case StatusEmptyQuery:
		return "EmptyQueryResponse"
	case StatusCopyIn:
		return "CopyIn"
	case StatusCopyOut:
		return "CopyOut"
	case StatusCopyBoth:
		return "CopyBoth"
	case StatusFatalError:
		return "FatalError"
	default:
		return "Unknown"
	}
}

// Result is one entry of a query's response stream. Each RowDescription
// opens a TuplesOk Result that collects the following DataRows, and each
// CommandComplete, EmptyQueryResponse, Copy*Response or ErrorResponse
// appends a Result of its own, so a row-returning statement yields a
// TuplesOk Result followed by a CommandOk one. Rows are kept
// in their raw wire form — "parked unparsed" per spec §2 — decoding happens
// lazily as the cursor's caller fetches each row.
type Result struct {
	Status     ResultStatus
	Descriptor wire.RowDescription
	Rows       []wire.DataRowMessage
	CommandTag string
	Err        error
}

// resultBuilder collects result statuses from raw server responses. This is
// the PQ generator's bookkeeping for one query's response stream.
type resultBuilder struct {
	results []Result
	current *Result
}

func (b *resultBuilder) onRowDescription(d wire.RowDescription) {
	b.results = append(b.results, Result{Status: StatusTuplesOK, Descriptor: d})
	b.current = &b.results[len(b.results)-1]
}

func (b *resultBuilder) onDataRow(row wire.DataRowMessage) {
	if b.current == nil {
		// A DataRow with no preceding RowDescription in this stream is a
		// protocol violation from the server; it is not reported as an
		// error, the row is kept in a TuplesOk Result with an empty
		// Descriptor.
		b.results = append(b.results, Result{Status: StatusTuplesOK})
		b.current = &b.results[len(b.results)-1]
	}
	b.current.Rows = append(b.current.Rows, row)
}

func (b *resultBuilder) onCommandComplete(tag string) {
	b.results = append(b.results, Result{Status: StatusCommandOK, CommandTag: tag})
	b.current = nil
}

func (b *resultBuilder) onEmptyQuery() {
	b.results = append(b.results, Result{Status: StatusEmptyQuery})
	b.current = nil
}

func (b *resultBuilder) onCopyIn() {
	b.results = append(b.results, Result{Status: StatusCopyIn})
	b.current = nil
}

func (b *resultBuilder) onCopyOut() {
	b.results = append(b.results, Result{Status: StatusCopyOut})
	b.current = nil
}

func (b *resultBuilder) onCopyBoth() {
	b.results = append(b.results, Result{Status: StatusCopyBoth})
	b.current = nil
}

func (b *resultBuilder) onError(fields wire.ErrorFields) {
	err := pqerr.NewDatabaseError(codeOf(fields.Code), fields.Message, fields.Detail, fields.Hint, pqerr.Severity(fields.Severity))
	if fields.ConstraintName != "" {
		err = pqerr.WithConstraintName(err, fields.ConstraintName)
	}
	b.results = append(b.results, Result{Status: StatusFatalError, Err: err})
	b.current = nil
}

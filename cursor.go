package pqcore

import (
	"context"

	"github.com/lowlevl/pqcore/internal/adapt"
	"github.com/lowlevl/pqcore/internal/prepare"
	"github.com/lowlevl/pqcore/internal/protocol"
	"github.com/lowlevl/pqcore/internal/transform"
	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
)

// ResultSet is one statement's classified outcome from a cursor's Execute
// call (spec §4.9 step 5's TuplesOk/CommandOk/EmptyQueryResponse
// classification; Copy*/fatal results never reach here — see
// classifyResults). Rows are not attached here: per spec §2's "parked
// unparsed until the user fetches them", they are decoded one at a time by
// Cursor.Fetchone, not eagerly at Execute time.
type ResultSet struct {
	Status     protocol.ResultStatus
	Columns    []string
	CommandTag string

	descriptor wire.RowDescription
	rows       []wire.DataRowMessage
}

// Cursor executes queries against its owning Connection and holds the
// per-cursor adapter registry scope and Transformer cache (spec §4.5,
// §4.6). A Cursor is not safe for concurrent use; neither is the
// Connection it shares an exclusion lock with.
//
// setPos/rowPos are spec §3's Cursor attributes "index into current
// result" and "current row index": setPos selects the ResultSet Fetchone
// and NextSet operate on, rowPos is how far Fetchone has advanced into its
// parked rows.
type Cursor struct {
	conn        *Connection
	registry    *adapt.Registry
	transformer *transform.Transformer

	results  []ResultSet
	setPos   int
	rowPos   int
	typesSet bool
}

func newCursor(conn *Connection) *Cursor {
	registry := conn.registry.Child()
	return &Cursor{
		conn:        conn,
		registry:    registry,
		transformer: transform.New(registry),
	}
}

// Execute runs sql, binding args positionally (%s placeholders) when any
// are given, and returns the cursor itself positioned on the first result
// set (spec §4.9: `execute(sql, params?) → self`). Fetch rows with
// Fetchone; move between statements of a multi-statement query with
// NextSet.
func (cur *Cursor) Execute(ctx context.Context, sql string, args ...any) (*Cursor, error) {
	if len(args) == 0 {
		return cur.executeSimple(ctx, sql)
	}

	return cur.executeExtended(ctx, sql, args)
}

// ExecuteNamed runs sql using %(name)s placeholders bound against args.
func (cur *Cursor) ExecuteNamed(ctx context.Context, sql string, args map[string]any) (*Cursor, error) {
	order := make([]string, 0, len(args))
	for name := range args {
		order = append(order, name)
	}

	prepared, err := prepare.Named(sql, order)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(prepared.Names))
	for i, name := range prepared.Names {
		values[i] = args[name]
	}

	return cur.bindAndRun(ctx, prepared, values)
}

func (cur *Cursor) executeSimple(ctx context.Context, sql string) (*Cursor, error) {
	cur.conn.state.Busy(false)

	dispatch, resultsPtr := protocol.NewSimpleQueryDispatch(cur.conn.state, cur.conn.applyParameterStatus)
	gen := protocol.NewGenerator(cur.conn.transport, cur.conn.state, wire.FrameQuery(sql), dispatch)

	if _, err := cur.conn.run(ctx, gen); err != nil {
		return nil, err
	}

	return cur.classifyResults(*resultsPtr)
}

func (cur *Cursor) executeExtended(ctx context.Context, sql string, args []any) (*Cursor, error) {
	prepared, err := prepare.Positional(sql)
	if err != nil {
		return nil, err
	}

	permuted := make([]any, len(prepared.Permutation))
	for i, argIdx := range prepared.Permutation {
		if argIdx >= len(args) {
			return nil, pqerr.NewProgrammingError("pqcore: query has %d placeholders but %d arguments given", len(prepared.Permutation), len(args))
		}
		permuted[i] = args[argIdx]
	}

	return cur.bindAndRun(ctx, prepared, permuted)
}

func (cur *Cursor) bindAndRun(ctx context.Context, prepared *prepare.Prepared, args []any) (*Cursor, error) {
	adaptFormats := make([]adapt.Format, len(args))
	for i := range adaptFormats {
		adaptFormats[i] = adapt.TextFormat
	}

	// adapt_sequence (spec §4.6): dump every parameter through its resolved
	// Dumper, producing the parallel payload/oid arrays the Bind message
	// needs.
	values, resolvedOIDs, err := cur.transformer.AdaptSequence(args, adaptFormats)
	if err != nil {
		return nil, err
	}

	formats := make([]wire.FormatCode, len(args))
	typeOIDs := make([]uint32, len(args))
	for i := range args {
		formats[i] = wire.TextFormat
		typeOIDs[i] = uint32(resolvedOIDs[i])
	}

	cur.conn.state.Busy(true)

	frame := wire.FrameExtendedQuery(wire.ExtendedQuery{
		SQL:           prepared.Query,
		ParamFormats:  formats,
		ParamValues:   values,
		ParamTypeOIDs: typeOIDs,
		ResultFormat:  wire.TextFormat,
	})

	dispatch := protocol.NewExtendedQueryDispatch(cur.conn.state, cur.conn.applyParameterStatus)
	gen := protocol.NewGenerator(cur.conn.transport, cur.conn.state, frame, dispatch)

	if _, err := cur.conn.run(ctx, gen); err != nil {
		return nil, err
	}

	return cur.classifyResults(gen.Results())
}

// classifyResults turns the raw protocol.Result list into the cursor's
// parked ResultSets, carried forward from psycopg3's cursor._execute_results
// switch (spec §4.9 step 5): TuplesOk rows are kept in wire form for
// Fetchone to decode lazily, CommandOk/EmptyQueryResponse carry no rows, a
// fatal result's error is raised immediately, and Copy* is rejected since
// copy() (not execute()) owns that path.
func (cur *Cursor) classifyResults(results []protocol.Result) (*Cursor, error) {
	if len(results) == 0 {
		return nil, pqerr.NewInternalError("pqcore: query produced no results")
	}

	sets := make([]ResultSet, 0, len(results))

	for _, r := range results {
		if r.Status == protocol.StatusFatalError {
			return nil, r.Err
		}

		if r.Status == protocol.StatusCopyIn || r.Status == protocol.StatusCopyOut || r.Status == protocol.StatusCopyBoth {
			return nil, pqerr.NewProgrammingError("pqcore: query result is %s; use copy(), not execute()", r.Status)
		}

		rs := ResultSet{Status: r.Status, CommandTag: r.CommandTag}

		if r.Status == protocol.StatusTuplesOK {
			rs.Columns = make([]string, len(r.Descriptor.Fields))
			for i, f := range r.Descriptor.Fields {
				rs.Columns[i] = f.Name
			}

			rs.descriptor = r.Descriptor
			rs.rows = r.Rows
		}

		sets = append(sets, rs)
	}

	cur.results = sets
	cur.setPos = 0
	cur.rowPos = 0
	cur.typesSet = false

	return cur, nil
}

// Current reports the Status/Columns/CommandTag of the result set Fetchone
// and NextSet are currently positioned on.
func (cur *Cursor) Current() ResultSet {
	if cur.setPos >= len(cur.results) {
		return ResultSet{}
	}

	rs := cur.results[cur.setPos]
	return ResultSet{Status: rs.Status, Columns: rs.Columns, CommandTag: rs.CommandTag}
}

// Fetchone decodes and returns the next row of the current result set,
// advancing the cursor's row position, or reports ok=false once the
// current result set is exhausted (spec §4.9/§6: `fetchone() → tuple |
// None`). Rows are parked unparsed until this is called (spec §2):
// SetRowTypes resolves the column loaders exactly once per result, on the
// first Fetchone call against it (spec §3).
//
// A decoding error leaves the cursor positioned on the offending row (spec
// §7): rowPos is not advanced, so a later Fetchone call decodes that same
// row again. Fetchone offers no way to step over it; NextSet moves on to
// the next result set.
func (cur *Cursor) Fetchone() (row []any, ok bool, err error) {
	if cur.setPos >= len(cur.results) {
		return nil, false, nil
	}

	rs := &cur.results[cur.setPos]
	if rs.Status != protocol.StatusTuplesOK || cur.rowPos >= len(rs.rows) {
		return nil, false, nil
	}

	if !cur.typesSet {
		if err := cur.transformer.SetRowTypes(rs.descriptor); err != nil {
			return nil, false, err
		}
		cur.typesSet = true
	}

	cast, err := cur.transformer.CastRow(rs.rows[cur.rowPos])
	if err != nil {
		return nil, false, err
	}

	cur.rowPos++
	return cast, true, nil
}

// NextSet advances to the next result set from the most recent Execute
// call, reporting false once exhausted (spec §4.9's multi-statement
// iteration / §6's `nextset() → true | None`).
func (cur *Cursor) NextSet() bool {
	if cur.setPos+1 >= len(cur.results) {
		return false
	}

	cur.setPos++
	cur.rowPos = 0
	cur.typesSet = false
	return true
}

// Close releases the cursor's resources. A Cursor holds no server-side
// state of its own (no server-side named portal survives past Execute's
// Sync), so Close is a no-op kept for lifecycle symmetry with Connection.
func (cur *Cursor) Close() error { return nil }

// NamedCursor is a placeholder for server-side (named) cursor streaming
// (DECLARE CURSOR / FETCH), explicitly out of scope per spec.md's
// Non-goals. It exists so the type is named in the API, with no protocol
// behind it — calling Declare on one is always a ProgrammingError.
type NamedCursor struct {
	Name string
}

// Declare always fails: server-side cursor streaming is a Non-goal.
func (n *NamedCursor) Declare(ctx context.Context, cur *Cursor, query string) error {
	return pqerr.NewProgrammingError("pqcore: named/server-side cursors are not implemented")
}

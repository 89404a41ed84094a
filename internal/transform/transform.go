// Package transform implements the Transformer of spec §4.6: the per-cursor
// adaptation cache that pairs a row descriptor with the dump/load functions
// each of its columns resolves to, so repeated rows of the same shape never
// repeat a registry lookup.
package transform

import (
	"fmt"

	"github.com/lowlevl/pqcore/internal/adapt"
	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
	"github.com/lib/pq/oid"
)

// Transformer memoizes, for one cursor, the Loader sequence resolved for
// the most recently seen row descriptor. A new descriptor (a new query, or
// a later result set within a multi-statement one) invalidates the cache.
type Transformer struct {
	registry *adapt.Registry

	descr   wire.RowDescription
	loaders []adapt.Loader
}

// New returns a Transformer resolving against registry (typically the
// cursor-scoped registry derived from its Connection's).
func New(registry *adapt.Registry) *Transformer {
	return &Transformer{registry: registry}
}

// SetRowTypes installs descr as the shape of the rows about to be fetched,
// resolving and caching a Loader per column (spec §4.6's set_row_types:
// loader lookup happens once per descriptor rather than once per row).
func (t *Transformer) SetRowTypes(descr wire.RowDescription) error {
	loaders := make([]adapt.Loader, len(descr.Fields))

	for i, f := range descr.Fields {
		format := adapt.TextFormat
		if f.Format == wire.BinaryFormat {
			format = adapt.BinaryFormat
		}

		l, err := t.registry.FindLoader(oid.Oid(f.TypeOID), format)
		if err != nil {
			return fmt.Errorf("transform: column %q: %w", f.Name, err)
		}

		loaders[i] = l
	}

	t.descr = descr
	t.loaders = loaders
	return nil
}

// CastRow decodes one DataRow using the cached loaders from the last
// SetRowTypes call. The returned slice has one entry per column, nil for
// SQL NULL.
func (t *Transformer) CastRow(row wire.DataRowMessage) ([]any, error) {
	if len(row.Values) != len(t.loaders) {
		return nil, pqerr.NewInternalError(
			"transform: row has %d values, descriptor has %d columns", len(row.Values), len(t.loaders))
	}

	out := make([]any, len(row.Values))
	for i, raw := range row.Values {
		v, err := t.loaders[i].Load(raw)
		if err != nil {
			return nil, fmt.Errorf("transform: column %q: %w", t.descr.Fields[i].Name, err)
		}
		out[i] = v
	}

	return out, nil
}

// Dump resolves and runs a Dumper for v at format, a convenience shortcut
// used by composite codecs for a single value (spec §4.6).
func (t *Transformer) Dump(v any, format adapt.Format) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	d, err := t.registry.FindDumper(v, format)
	if err != nil {
		return nil, err
	}

	return d.Dump(v)
}

// Load resolves and runs a Loader for the given oid/format, the read-side
// counterpart of Dump used by composite codecs (spec §4.6).
func (t *Transformer) Load(data []byte, o oid.Oid, format adapt.Format) (any, error) {
	l, err := t.registry.FindLoader(o, format)
	if err != nil {
		return nil, err
	}

	return l.Load(data)
}

// AdaptSequence dumps each value through the dumper resolved for its
// runtime type, returning parallel payload and oid arrays aligned with the
// wire Bind layout (spec §4.6). A nil value encodes SQL NULL with no
// resolvable oid (0, left for the server to infer). When the resolved
// Dumper implements adapt.DynamicOid — e.g. a binary integer, whose width
// depends on the runtime value rather than the Go type — that resolved oid
// is reported instead of the Dumper's static one.
func (t *Transformer) AdaptSequence(values []any, formats []adapt.Format) ([][]byte, []oid.Oid, error) {
	payloads := make([][]byte, len(values))
	oids := make([]oid.Oid, len(values))

	for i, v := range values {
		if v == nil {
			continue
		}

		format := adapt.TextFormat
		if i < len(formats) {
			format = formats[i]
		}

		d, err := t.registry.FindDumper(v, format)
		if err != nil {
			return nil, nil, err
		}

		payload, err := d.Dump(v)
		if err != nil {
			return nil, nil, err
		}

		payloads[i] = payload
		if dyn, ok := d.(adapt.DynamicOid); ok {
			oids[i] = dyn.ResolveOid(v)
		} else {
			oids[i] = d.Oid()
		}
	}

	return payloads, oids, nil
}

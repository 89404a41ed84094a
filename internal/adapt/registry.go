package adapt

import (
	"reflect"

	"github.com/lowlevl/pqcore/pqerr"
	"github.com/lib/pq/oid"
)

// dumperKey and loaderKey are the lookup keys spec §4.5 defines: a dumper is
// keyed by the Go type being dumped plus the wire format requested, a loader
// by the server-reported oid plus the wire format the column actually
// arrived in.
type dumperKey struct {
	typ    reflect.Type
	format Format
}

type loaderKey struct {
	oid    oid.Oid
	format Format
}

// Registry is the three-scope Adapter Registry of spec §4.5: a global
// registry seeded with the built-in codecs, a per-Connection registry that
// can add or shadow entries (e.g. a composite type registered on this
// connection), and a per-Cursor registry for one-off overrides. Lookup
// checks cursor, then connection, then global, returning the first hit.
type Registry struct {
	parent  *Registry
	dumpers map[dumperKey]Dumper
	loaders map[loaderKey]Loader

	// supertypes lists, for a concrete Go type with no direct dumper, the
	// ancestor types to probe next (spec §4.5: dumper lookup alone falls
	// back to a value's supertypes — e.g. a named int type falls back to
	// plain int — loader lookup never does, since an oid has no supertype).
	supertypes map[reflect.Type][]reflect.Type
}

// NewRegistry returns an empty registry with no parent scope. The caller
// typically calls this once for the global scope and seeds it with
// RegisterBuiltins.
func NewRegistry() *Registry {
	return &Registry{
		dumpers:    map[dumperKey]Dumper{},
		loaders:    map[loaderKey]Loader{},
		supertypes: map[reflect.Type][]reflect.Type{},
	}
}

// Child returns a new registry scoped under r: lookups that miss locally
// fall through to r. Used to derive a Connection-scoped registry from the
// global one, and a Cursor-scoped registry from its Connection's.
func (r *Registry) Child() *Registry {
	child := NewRegistry()
	child.parent = r
	return child
}

// RegisterDumper adds or shadows the Dumper for (typ, format) at this scope.
func (r *Registry) RegisterDumper(typ reflect.Type, format Format, d Dumper) {
	r.dumpers[dumperKey{typ, format}] = d
}

// RegisterLoader adds or shadows the Loader for (oid, format) at this scope.
func (r *Registry) RegisterLoader(o oid.Oid, format Format, l Loader) {
	r.loaders[loaderKey{o, format}] = l
}

// RegisterSupertype records that, absent a direct dumper, a value of typ
// should also be tried as one of supers, in order. Used for named types
// derived from a builtin kind and for interface-satisfying wrapper types.
func (r *Registry) RegisterSupertype(typ reflect.Type, supers ...reflect.Type) {
	r.supertypes[typ] = append(r.supertypes[typ], supers...)
}

// FindDumper resolves the Dumper for v at the requested format, checking
// this scope, then its supertype fallbacks, then the parent scope
// (spec §4.5: cursor -> connection -> global, with supertype fallback
// within each scope before falling through to the next).
func (r *Registry) FindDumper(v any, format Format) (Dumper, error) {
	if v == nil {
		return nil, pqerr.NewProgrammingError("adapt: cannot resolve a dumper for nil without a known target type")
	}

	typ := reflect.TypeOf(v)
	if d, ok := r.lookupDumper(typ, format); ok {
		return d, nil
	}

	return nil, pqerr.NewProgrammingError("adapt: no dumper registered for %s in %v format", typ, format)
}

func (r *Registry) lookupDumper(typ reflect.Type, format Format) (Dumper, bool) {
	for scope := r; scope != nil; scope = scope.parent {
		if d, ok := scope.dumpers[dumperKey{typ, format}]; ok {
			return d, true
		}

		for _, super := range scope.supertypes[typ] {
			if d, ok := scope.lookupDumper(super, format); ok {
				return d, true
			}
		}
	}

	return nil, false
}

// FindLoader resolves the Loader for (o, format), checking this scope then
// its parent. Unlike FindDumper there is no supertype fallback: an oid
// identifies a concrete wire type with no ancestor to retry. An oid with no
// registered loader at all falls through to rawLoader, returning the
// column's raw bytes rather than failing the whole result set (spec §4.5).
func (r *Registry) FindLoader(o oid.Oid, format Format) (Loader, error) {
	for scope := r; scope != nil; scope = scope.parent {
		if l, ok := scope.loaders[loaderKey{o, format}]; ok {
			return l, nil
		}
	}

	return rawLoader{}, nil
}

// rawLoader is the default text loader spec §4.5 requires for oids with no
// registered codec: it hands the caller the column's raw wire bytes instead
// of failing the decode outright, and nil for SQL NULL.
type rawLoader struct{}

func (rawLoader) Load(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	return data, nil
}
func (rawLoader) Format() Format                { return TextFormat }

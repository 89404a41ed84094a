package adapt

import (
	"reflect"

	"github.com/lib/pq/oid"
)

// typeOf returns the reflect.Type for T, the key Dumper lookup indexes on.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Dumper converts a Go value into wire bytes for one format, per spec §4.5.
// Implementations must be safe for concurrent use: a single Dumper instance
// is shared across every connection/cursor scope that resolves to it.
type Dumper interface {
	// Dump encodes v, returning nil to represent SQL NULL.
	Dump(v any) ([]byte, error)

	// Oid is the Postgres type this Dumper targets when the caller hasn't
	// pinned one explicitly (spec §4.5's "dumper knows its own default oid").
	Oid() oid.Oid

	// Format is the wire format this Dumper produces.
	Format() Format
}

// Loader converts wire bytes back into a Go value, per spec §4.5.
type Loader interface {
	// Load decodes data, which is nil for SQL NULL, into a Go value.
	Load(data []byte) (any, error)

	// Format is the wire format this Loader consumes.
	Format() Format
}

// DynamicOid is an optional refinement of Dumper for codecs whose resolved
// oid depends on the runtime value rather than being fixed at registration
// (spec §4.5: "an integer dumper must choose the narrowest fitting oid when
// in binary format"). AdaptSequence prefers ResolveOid over the static Oid
// method when a Dumper implements this.
type DynamicOid interface {
	ResolveOid(v any) oid.Oid
}

// Format mirrors wire.FormatCode without importing the wire package, so
// adapt stays usable by anything that only knows Go values and OIDs.
type Format int

const (
	TextFormat Format = iota
	BinaryFormat
)

// DumperFunc and LoaderFunc let a plain function satisfy Dumper/Loader for
// the common case of a stateless codec with a fixed oid/format.
type DumperFunc struct {
	Fn     func(v any) ([]byte, error)
	OidVal oid.Oid
	Fmt    Format
}

func (d DumperFunc) Dump(v any) ([]byte, error) { return d.Fn(v) }
func (d DumperFunc) Oid() oid.Oid                { return d.OidVal }
func (d DumperFunc) Format() Format              { return d.Fmt }

type LoaderFunc struct {
	Fn  func(data []byte) (any, error)
	Fmt Format
}

func (l LoaderFunc) Load(data []byte) (any, error) { return l.Fn(data) }
func (l LoaderFunc) Format() Format                { return l.Fmt }

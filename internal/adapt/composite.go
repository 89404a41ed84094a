package adapt

import (
	"fmt"

	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
	"github.com/lib/pq/oid"
)

// FieldInfo describes one attribute of a registered composite type.
type FieldInfo struct {
	Name string
	Oid  oid.Oid
}

// CompositeTypeInfo is what RegisterComposite needs to build a dumper and
// loader pair for a server-side composite/row type (spec §4.8): its oid,
// its fields in declaration order, and the Go type it round-trips through.
// The Go side is a map[string]any keyed by field name — a typed struct
// mapping is left to a higher layer, matching the scope of the driver core.
type CompositeTypeInfo struct {
	Oid    oid.Oid
	Fields []FieldInfo
}

// RegisterComposite builds and registers the text-format Dumper/Loader for
// info on r (typically a Connection-scoped registry, since composite types
// are schema objects that exist per-database, not globally, per spec §4.8).
// The Go-side value is map[string]any; a nil map entry or absent key both
// dump as NULL.
func RegisterComposite(r *Registry, info CompositeTypeInfo) {
	nfields := len(info.Fields)

	r.RegisterDumper(typeOf[map[string]any](), TextFormat, DumperFunc{
		OidVal: info.Oid,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, pqerr.NewProgrammingError("adapt: composite value must be map[string]any, got %T", v)
			}

			values := make([]*string, nfields)
			for i, f := range info.Fields {
				raw, present := m[f.Name]
				if !present || raw == nil {
					continue
				}

				dumper, err := r.FindDumper(raw, TextFormat)
				if err != nil {
					return nil, fmt.Errorf("adapt: composite field %q: %w", f.Name, err)
				}

				encoded, err := dumper.Dump(raw)
				if err != nil {
					return nil, fmt.Errorf("adapt: composite field %q: %w", f.Name, err)
				}

				s := string(encoded)
				values[i] = &s
			}

			return []byte(wire.EncodeCompositeText(values)), nil
		},
	})

	r.RegisterLoader(info.Oid, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}

		fields, err := wire.DecodeCompositeText(string(data), nfields)
		if err != nil {
			return nil, err
		}

		out := make(map[string]any, nfields)
		for i, f := range info.Fields {
			if fields[i] == nil {
				out[f.Name] = nil
				continue
			}

			loader, err := r.FindLoader(f.Oid, TextFormat)
			if err != nil {
				return nil, fmt.Errorf("adapt: composite field %q: %w", f.Name, err)
			}

			val, err := loader.Load([]byte(*fields[i]))
			if err != nil {
				return nil, fmt.Errorf("adapt: composite field %q: %w", f.Name, err)
			}

			out[f.Name] = val
		}

		return out, nil
	}})
}

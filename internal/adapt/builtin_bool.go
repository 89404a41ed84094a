package adapt

import (
	"github.com/lowlevl/pqcore/pqerr"
	"github.com/lib/pq/oid"
)

func registerBool(r *Registry) {
	r.RegisterDumper(typeOf[bool](), TextFormat, DumperFunc{
		OidVal: oid.T_bool,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			if v.(bool) {
				return []byte("t"), nil
			}
			return []byte("f"), nil
		},
	})

	r.RegisterLoader(oid.T_bool, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		switch string(data) {
		case "t":
			return true, nil
		case "f":
			return false, nil
		default:
			return nil, pqerr.NewInternalError("adapt: malformed bool text %q", data)
		}
	}})

	r.RegisterLoader(oid.T_bool, BinaryFormat, LoaderFunc{Fmt: BinaryFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		if len(data) != 1 {
			return nil, pqerr.NewInternalError("adapt: malformed binary bool (%d bytes)", len(data))
		}
		return data[0] != 0, nil
	}})
}

package adapt

import (
	"encoding/hex"

	"github.com/lowlevl/pqcore/pqerr"
	"github.com/lib/pq/oid"
)

// registerBytea wires []byte, using Postgres' "hex" bytea text format
// (\x-prefixed) rather than the legacy escape format, matching every
// modern server default.
func registerBytea(r *Registry) {
	r.RegisterDumper(typeOf[[]byte](), TextFormat, DumperFunc{
		OidVal: oid.T_bytea,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			b := v.([]byte)
			out := make([]byte, 2+hex.EncodedLen(len(b)))
			out[0], out[1] = '\\', 'x'
			hex.Encode(out[2:], b)
			return out, nil
		},
	})

	r.RegisterLoader(oid.T_bytea, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		if len(data) < 2 || data[0] != '\\' || data[1] != 'x' {
			return nil, pqerr.NewInternalError("adapt: bytea text value missing \\x prefix")
		}
		out := make([]byte, hex.DecodedLen(len(data)-2))
		if _, err := hex.Decode(out, data[2:]); err != nil {
			return nil, pqerr.NewInternalError("adapt: malformed bytea hex: %w", err)
		}
		return out, nil
	}})

	r.RegisterLoader(oid.T_bytea, BinaryFormat, LoaderFunc{Fmt: BinaryFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		return append([]byte{}, data...), nil
	}})
}

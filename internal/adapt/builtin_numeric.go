package adapt

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/lowlevl/pqcore/pqerr"
	"github.com/lib/pq/oid"
	"github.com/shopspring/decimal"
)

// registerNumeric wires int2/int4/int8/float4/float8/numeric dumpers and
// loaders (spec §4.5's builtin set). numeric itself is carried as
// github.com/shopspring/decimal.Decimal end to end, matching the teacher's
// own examples/numeric example, which pairs decimal.Decimal with
// oid.T_numeric for exactly this reason.
func registerNumeric(r *Registry) {
	registerIntCodec[int64](r, oid.T_int8, strconv.ParseInt, func(v int64) ([]byte, error) {
		return []byte(strconv.FormatInt(v, 10)), nil
	})
	registerIntCodec[int32](r, oid.T_int4, func(s string, base, bits int) (int32, error) {
		v, err := strconv.ParseInt(s, base, bits)
		return int32(v), err
	}, func(v int32) ([]byte, error) {
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	})
	registerIntCodec[int16](r, oid.T_int2, func(s string, base, bits int) (int16, error) {
		v, err := strconv.ParseInt(s, base, bits)
		return int16(v), err
	}, func(v int16) ([]byte, error) {
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	})
	// Plain Go int (spec §8 scenario 2's own worked example,
	// execute("select %s, %s", [42, "hi"])) dumps like int64; no loader is
	// registered under it since an oid never identifies "Go int" — decoding
	// int8/int4/int2 columns always goes through the loaders above.
	r.RegisterDumper(typeOf[int](), TextFormat, DumperFunc{
		OidVal: oid.T_numeric,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			return []byte(strconv.FormatInt(int64(v.(int)), 10)), nil
		},
	})

	registerBinaryIntDumper[int16](r)
	registerBinaryIntDumper[int32](r)
	registerBinaryIntDumper[int64](r)
	registerBinaryIntDumper[int](r)

	r.RegisterDumper(typeOf[float64](), TextFormat, DumperFunc{
		OidVal: oid.T_float8,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			return []byte(strconv.FormatFloat(v.(float64), 'g', -1, 64)), nil
		},
	})
	r.RegisterLoader(oid.T_float8, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		return strconv.ParseFloat(string(data), 64)
	}})

	r.RegisterDumper(typeOf[float32](), TextFormat, DumperFunc{
		OidVal: oid.T_float4,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			return []byte(strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32)), nil
		},
	})
	r.RegisterLoader(oid.T_float4, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		f, err := strconv.ParseFloat(string(data), 32)
		return float32(f), err
	}})

	r.RegisterDumper(typeOf[decimal.Decimal](), TextFormat, DumperFunc{
		OidVal: oid.T_numeric,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			return []byte(v.(decimal.Decimal).String()), nil
		},
	})
	r.RegisterLoader(oid.T_numeric, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		return decimal.NewFromString(string(data))
	}})

	// Binary int2/int4/int8/float8 loaders, used for result columns that
	// arrive in BinaryFormat; the integer ones pair with the dumping side
	// below (binaryIntDumper).
	r.RegisterLoader(oid.T_int8, BinaryFormat, LoaderFunc{Fmt: BinaryFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		if len(data) != 8 {
			return nil, pqerr.NewInternalError("adapt: malformed binary int8 (%d bytes)", len(data))
		}
		return int64(binary.BigEndian.Uint64(data)), nil
	}})
	r.RegisterLoader(oid.T_int4, BinaryFormat, LoaderFunc{Fmt: BinaryFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		if len(data) != 4 {
			return nil, pqerr.NewInternalError("adapt: malformed binary int4 (%d bytes)", len(data))
		}
		return int32(binary.BigEndian.Uint32(data)), nil
	}})
	r.RegisterLoader(oid.T_int2, BinaryFormat, LoaderFunc{Fmt: BinaryFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		if len(data) != 2 {
			return nil, pqerr.NewInternalError("adapt: malformed binary int2 (%d bytes)", len(data))
		}
		return int16(binary.BigEndian.Uint16(data)), nil
	}})
	r.RegisterLoader(oid.T_float8, BinaryFormat, LoaderFunc{Fmt: BinaryFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		if len(data) != 8 {
			return nil, pqerr.NewInternalError("adapt: malformed binary float8 (%d bytes)", len(data))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	}})
}

func registerIntCodec[T ~int16 | ~int32 | ~int64](
	r *Registry,
	o oid.Oid,
	parse func(s string, base, bitSize int) (T, error),
	dump func(T) ([]byte, error),
) {
	// A text-format integer dumper always reports oid.T_numeric: the wire
	// width is unknown at serialization time, so the server is left to
	// infer it from the literal (spec §4.5). The loader side is unaffected
	// — a column reported as int2/int4/int8 still decodes to the matching
	// Go width.
	r.RegisterDumper(typeOf[T](), TextFormat, DumperFunc{
		OidVal: oid.T_numeric,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) { return dump(v.(T)) },
	})
	r.RegisterLoader(o, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		bits := 64
		switch any(T(0)).(type) {
		case int32:
			bits = 32
		case int16:
			bits = 16
		}
		return parse(string(data), 10, bits)
	}})
}

// binaryIntDumper implements Dumper and DynamicOid for binary-format
// integers: per spec §4.5/§8, the encoded width (and reported oid) tracks
// the narrowest type that fits the runtime value, independent of the Go
// type's own bit width — e.g. int64(1) dumps as int2.
type binaryIntDumper struct{}

func (binaryIntDumper) Format() Format { return BinaryFormat }
func (binaryIntDumper) Oid() oid.Oid   { return oid.T_int8 }

func (binaryIntDumper) Dump(v any) ([]byte, error) {
	n, err := asInt64(v)
	if err != nil {
		return nil, err
	}

	switch narrowestIntOid(n) {
	case oid.T_int2:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(int16(n)))
		return b, nil
	case oid.T_int4:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(int32(n)))
		return b, nil
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(n))
		return b, nil
	}
}

// ResolveOid implements DynamicOid, letting AdaptSequence report the
// narrowest-fitting oid instead of binaryIntDumper's static Oid fallback.
func (binaryIntDumper) ResolveOid(v any) oid.Oid {
	n, err := asInt64(v)
	if err != nil {
		return oid.T_int8
	}
	return narrowestIntOid(n)
}

func narrowestIntOid(n int64) oid.Oid {
	switch {
	case n >= math.MinInt16 && n <= math.MaxInt16:
		return oid.T_int2
	case n >= math.MinInt32 && n <= math.MaxInt32:
		return oid.T_int4
	default:
		return oid.T_int8
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, pqerr.NewInternalError("adapt: binary int dumper received unsupported type %T", v)
	}
}

func registerBinaryIntDumper[T ~int16 | ~int32 | ~int64 | ~int](r *Registry) {
	r.RegisterDumper(typeOf[T](), BinaryFormat, binaryIntDumper{})
}


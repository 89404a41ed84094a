package adapt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lib/pq/oid"
)

func TestNumericRoundTrip(t *testing.T) {
	r := newTestRegistry()

	d, err := r.FindDumper(int64(123), TextFormat)
	require.NoError(t, err)
	out, err := d.Dump(int64(123))
	require.NoError(t, err)
	assert.Equal(t, "123", string(out))

	l, err := r.FindLoader(oid.T_int8, TextFormat)
	require.NoError(t, err)
	v, err := l.Load(out)
	require.NoError(t, err)
	assert.Equal(t, int64(123), v)
}

func TestDecimalRoundTrip(t *testing.T) {
	r := newTestRegistry()

	in := decimal.NewFromFloat(19.99)
	d, err := r.FindDumper(in, TextFormat)
	require.NoError(t, err)
	out, err := d.Dump(in)
	require.NoError(t, err)

	l, err := r.FindLoader(oid.T_numeric, TextFormat)
	require.NoError(t, err)
	v, err := l.Load(out)
	require.NoError(t, err)
	assert.True(t, in.Equal(v.(decimal.Decimal)))
}

func TestBoolRoundTrip(t *testing.T) {
	r := newTestRegistry()

	l, err := r.FindLoader(oid.T_bool, TextFormat)
	require.NoError(t, err)

	v, err := l.Load([]byte("t"))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = l.Load([]byte("f"))
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestBoolMalformedText(t *testing.T) {
	r := newTestRegistry()
	l, _ := r.FindLoader(oid.T_bool, TextFormat)

	_, err := l.Load([]byte("x"))
	assert.Error(t, err)
}

func TestByteaHexRoundTrip(t *testing.T) {
	r := newTestRegistry()

	d, err := r.FindDumper([]byte("hi"), TextFormat)
	require.NoError(t, err)
	out, err := d.Dump([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, `\x6869`, string(out))

	l, err := r.FindLoader(oid.T_bytea, TextFormat)
	require.NoError(t, err)
	v, err := l.Load(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), v)
}

func TestTextLoaderAppliesToVarcharAndBpchar(t *testing.T) {
	r := newTestRegistry()

	for _, o := range []oid.Oid{oid.T_text, oid.T_varchar, oid.T_bpchar, oid.T_name} {
		l, err := r.FindLoader(o, TextFormat)
		require.NoError(t, err)
		v, err := l.Load([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
	}
}

func TestLoadersReturnNilForSQLNull(t *testing.T) {
	r := newTestRegistry()

	l, _ := r.FindLoader(oid.T_int4, TextFormat)
	v, err := l.Load(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestUnregisteredOidFallsThroughToRawLoader(t *testing.T) {
	r := newTestRegistry()

	l, err := r.FindLoader(oid.Oid(99999), TextFormat)
	require.NoError(t, err)

	v, err := l.Load([]byte("\x01\x02\x03"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x01\x02\x03"), v)
}

func TestTextIntegerDumperAlwaysReportsNumeric(t *testing.T) {
	r := newTestRegistry()

	for _, v := range []any{int16(1), int32(1), int64(1), int(1)} {
		d, err := r.FindDumper(v, TextFormat)
		require.NoError(t, err)
		assert.Equal(t, oid.T_numeric, d.Oid(), "%T", v)
	}
}

func TestBinaryIntegerDumperPicksNarrowestOid(t *testing.T) {
	r := newTestRegistry()

	cases := []struct {
		v   int64
		oid oid.Oid
	}{
		{-32768, oid.T_int2},
		{32767, oid.T_int2},
		{-32769, oid.T_int4},
		{1 << 31, oid.T_int8},
	}

	for _, c := range cases {
		d, err := r.FindDumper(c.v, BinaryFormat)
		require.NoError(t, err)

		dyn, ok := d.(DynamicOid)
		require.True(t, ok)
		assert.Equal(t, c.oid, dyn.ResolveOid(c.v), "value %d", c.v)

		payload, err := d.Dump(c.v)
		require.NoError(t, err)
		switch c.oid {
		case oid.T_int2:
			assert.Len(t, payload, 2)
		case oid.T_int4:
			assert.Len(t, payload, 4)
		case oid.T_int8:
			assert.Len(t, payload, 8)
		}
	}
}

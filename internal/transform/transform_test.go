package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lib/pq/oid"

	"github.com/lowlevl/pqcore/internal/adapt"
	"github.com/lowlevl/pqcore/internal/wire"
)

func newTestTransformer() *Transformer {
	r := adapt.NewRegistry()
	adapt.RegisterBuiltins(r)
	return New(r)
}

func descriptorFor(names []string, oids []uint32) wire.RowDescription {
	fields := make([]wire.FieldDescriptor, len(names))
	for i := range names {
		fields[i] = wire.FieldDescriptor{Name: names[i], TypeOID: oids[i], Format: wire.TextFormat}
	}
	return wire.RowDescription{Fields: fields}
}

func TestSetRowTypesAndCastRow(t *testing.T) {
	tr := newTestTransformer()

	require.NoError(t, tr.SetRowTypes(descriptorFor([]string{"id", "name"}, []uint32{23, 25})))

	row := wire.DataRowMessage{Values: [][]byte{[]byte("1"), []byte("ada")}}
	values, err := tr.CastRow(row)
	require.NoError(t, err)

	assert.Equal(t, int32(1), values[0])
	assert.Equal(t, "ada", values[1])
}

func TestCastRowHandlesNull(t *testing.T) {
	tr := newTestTransformer()
	require.NoError(t, tr.SetRowTypes(descriptorFor([]string{"name"}, []uint32{25})))

	row := wire.DataRowMessage{Values: [][]byte{nil}}
	values, err := tr.CastRow(row)
	require.NoError(t, err)
	assert.Nil(t, values[0])
}

func TestCastRowColumnCountMismatchIsInternalError(t *testing.T) {
	tr := newTestTransformer()
	require.NoError(t, tr.SetRowTypes(descriptorFor([]string{"id"}, []uint32{23})))

	_, err := tr.CastRow(wire.DataRowMessage{Values: [][]byte{[]byte("1"), []byte("extra")}})
	assert.Error(t, err)
}

func TestSetRowTypesUnknownOidFallsThroughToRawBytes(t *testing.T) {
	tr := newTestTransformer()
	require.NoError(t, tr.SetRowTypes(descriptorFor([]string{"x"}, []uint32{999999})))

	values, err := tr.CastRow(wire.DataRowMessage{Values: [][]byte{[]byte("raw")}})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), values[0])
}

func TestAdaptSequenceResolvesOidsPerValue(t *testing.T) {
	tr := newTestTransformer()

	payloads, oids, err := tr.AdaptSequence(
		[]any{int32(42), "hi"},
		[]adapt.Format{adapt.TextFormat, adapt.TextFormat},
	)
	require.NoError(t, err)

	assert.Equal(t, "42", string(payloads[0]))
	assert.Equal(t, oid.T_numeric, oids[0])

	assert.Equal(t, "hi", string(payloads[1]))
	assert.Equal(t, oid.T_text, oids[1])
}

func TestAdaptSequenceUsesDynamicOidForBinaryIntegers(t *testing.T) {
	tr := newTestTransformer()

	payloads, oids, err := tr.AdaptSequence([]any{int64(5)}, []adapt.Format{adapt.BinaryFormat})
	require.NoError(t, err)

	assert.Equal(t, oid.T_int2, oids[0])
	assert.Len(t, payloads[0], 2)
}

func TestDump(t *testing.T) {
	tr := newTestTransformer()

	out, err := tr.Dump(int32(42), adapt.TextFormat)
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))
}

func TestDumpNilShortCircuits(t *testing.T) {
	tr := newTestTransformer()

	out, err := tr.Dump(nil, adapt.TextFormat)
	require.NoError(t, err)
	assert.Nil(t, out)
}

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestEncodeDecodeCompositeTextRoundTrip(t *testing.T) {
	values := []*string{strptr("ada"), strptr("36")}
	text := EncodeCompositeText(values)
	assert.Equal(t, "(ada,36)", text)

	decoded, err := DecodeCompositeText(text, 2)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "ada", *decoded[0])
	assert.Equal(t, "36", *decoded[1])
}

func TestEncodeCompositeTextQuotesSpecialChars(t *testing.T) {
	text := EncodeCompositeText([]*string{strptr(`a,b`), strptr(`has "quotes"`)})
	assert.Equal(t, `("a,b","has ""quotes""")`, text)
}

func TestSingleFieldNullVersusZeroFieldAmbiguity(t *testing.T) {
	// A single NULL field and the zero-field composite both render as "()";
	// only the caller-supplied field count (from CompositeTypeInfo)
	// disambiguates them on decode.
	oneNull, err := DecodeCompositeText("()", 1)
	require.NoError(t, err)
	require.Len(t, oneNull, 1)
	assert.Nil(t, oneNull[0])

	zero, err := DecodeCompositeText("()", 0)
	require.NoError(t, err)
	assert.Empty(t, zero)
}

func TestDecodeCompositeTextDistinguishesNullFromEmptyString(t *testing.T) {
	decoded, err := DecodeCompositeText(`(,"")`, 2)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Nil(t, decoded[0])
	require.NotNil(t, decoded[1])
	assert.Equal(t, "", *decoded[1])
}

func TestDecodeCompositeTextMalformed(t *testing.T) {
	_, err := DecodeCompositeText("not a composite", 1)
	assert.Error(t, err)
}

func TestEncodeDecodeCompositeBinaryRoundTrip(t *testing.T) {
	fields := []CompositeBinaryField{
		{OID: 23, Payload: []byte{0, 0, 0, 42}},
		{OID: 25, Payload: nil},
	}

	encoded := EncodeCompositeBinary(fields)
	decoded, err := DecodeCompositeBinary(encoded)
	require.NoError(t, err)

	require.Len(t, decoded, 2)
	assert.Equal(t, fields[0], decoded[0])
	assert.Nil(t, decoded[1].Payload)
}

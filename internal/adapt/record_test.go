package adapt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lib/pq/oid"
)

func TestRecordLoaderDecodesFields(t *testing.T) {
	r := newTestRegistry()

	l, err := r.FindLoader(oid.T_record, TextFormat)
	require.NoError(t, err)

	v, err := l.Load([]byte(`(ada,36)`))
	require.NoError(t, err)

	fields, ok := v.([]*string)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "ada", *fields[0])
	assert.Equal(t, "36", *fields[1])
}

func TestRecordLoaderZeroFields(t *testing.T) {
	r := newTestRegistry()
	l, _ := r.FindLoader(oid.T_record, TextFormat)

	v, err := l.Load([]byte(`()`))
	require.NoError(t, err)
	assert.Empty(t, v.([]*string))
}

func TestCountTopLevelFieldsIgnoresQuotedCommas(t *testing.T) {
	assert.Equal(t, 2, countTopLevelFields(`"a,b",c`))
	assert.Equal(t, 3, countTopLevelFields(`a,b,c`))
	assert.Equal(t, 1, countTopLevelFields(`a`))
}

func TestRecordLoaderMalformedLiteral(t *testing.T) {
	r := newTestRegistry()
	l, _ := r.FindLoader(oid.T_record, TextFormat)

	_, err := l.Load([]byte(`not a record`))
	assert.Error(t, err)
}

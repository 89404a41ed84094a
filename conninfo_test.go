package pqcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnInfoSimple(t *testing.T) {
	info, err := ParseConnInfo("host=localhost port=5432 user=alice")
	require.NoError(t, err)

	assert.Equal(t, "localhost", info["host"])
	assert.Equal(t, "5432", info["port"])
	assert.Equal(t, "alice", info["user"])
}

func TestParseConnInfoQuotedValueWithSpace(t *testing.T) {
	info, err := ParseConnInfo(`application_name='my app' host=localhost`)
	require.NoError(t, err)

	assert.Equal(t, "my app", info["application_name"])
	assert.Equal(t, "localhost", info["host"])
}

func TestParseConnInfoQuotedEscapes(t *testing.T) {
	info, err := ParseConnInfo(`password='it\'s \\secret'`)
	require.NoError(t, err)

	assert.Equal(t, `it's \secret`, info["password"])
}

func TestParseConnInfoMissingEquals(t *testing.T) {
	_, err := ParseConnInfo("hostlocalhost")
	assert.Error(t, err)
}

func TestParseConnInfoUnterminatedQuote(t *testing.T) {
	_, err := ParseConnInfo(`host='localhost`)
	assert.Error(t, err)
}

package pqcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEncodingKnownPostgresNames(t *testing.T) {
	for _, name := range []string{"UTF8", "LATIN1", "WIN1252", "SQL_ASCII"} {
		enc, err := resolveEncoding(name)
		require.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}
}

func TestResolveEncodingUnknownIsProgrammingError(t *testing.T) {
	_, err := resolveEncoding("NOT_A_REAL_ENCODING")
	assert.Error(t, err)
}

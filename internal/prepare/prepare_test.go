package prepare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionalRewritesInAppearanceOrder(t *testing.T) {
	p, err := Positional("select * from t where a = %s and b = %s")
	require.NoError(t, err)

	assert.Equal(t, "select * from t where a = $1 and b = $2", p.Query)
	assert.Equal(t, []int{0, 1}, p.Permutation)
	assert.Nil(t, p.Names)
}

func TestPositionalEscapesPercent(t *testing.T) {
	p, err := Positional("select '100%%' where a = %s")
	require.NoError(t, err)

	assert.Equal(t, "select '100%' where a = $1", p.Query)
}

func TestPositionalDanglingPercentIsProgrammingError(t *testing.T) {
	_, err := Positional("select %s, %")
	assert.Error(t, err)
}

func TestPositionalRejectsNamedPlaceholder(t *testing.T) {
	_, err := Positional("select %(name)s")
	assert.Error(t, err)
}

func TestNamedRewritesAndPermutes(t *testing.T) {
	p, err := Named("select * from t where a = %(a)s and b = %(b)s", []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, "select * from t where a = $1 and b = $2", p.Query)
	assert.Equal(t, []int{0, 1}, p.Permutation)
	assert.Equal(t, []string{"a", "b"}, p.Names)
}

func TestNamedReusesRepeatedPlaceholder(t *testing.T) {
	p, err := Named("select %(a)s, %(a)s, %(b)s", []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, "select $1, $1, $2", p.Query)
	assert.Equal(t, []string{"a", "b"}, p.Names)
}

func TestNamedUnknownPlaceholderIsProgrammingError(t *testing.T) {
	_, err := Named("select %(missing)s", []string{"a"})
	assert.Error(t, err)
}

func TestNamedRejectsPositionalPlaceholder(t *testing.T) {
	_, err := Named("select %s", []string{"a"})
	assert.Error(t, err)
}

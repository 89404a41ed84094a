package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassReturnsTwoCharPrefix(t *testing.T) {
	assert.Equal(t, "23", UniqueViolation.Class())
	assert.Equal(t, "40", SerializationFailure.Class())
}

func TestClassHandlesShortCode(t *testing.T) {
	assert.Equal(t, "x", Code("x").Class())
	assert.Equal(t, "", Code("").Class())
}

package pqerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lowlevl/pqcore/codes"
)

func TestWithCodeGetCode(t *testing.T) {
	err := WithCode(errors.New("boom"), codes.UniqueViolation)
	assert.Equal(t, codes.UniqueViolation, GetCode(err))
}

func TestGetCodeUncategorizedByDefault(t *testing.T) {
	assert.Equal(t, codes.Uncategorized, GetCode(errors.New("boom")))
}

func TestWithCodeNilError(t *testing.T) {
	assert.Nil(t, WithCode(nil, codes.UniqueViolation))
}

func TestGetCodePrefersInnerCode(t *testing.T) {
	inner := WithCode(errors.New("boom"), codes.UniqueViolation)
	outer := &withKind{cause: inner, kind: KindDatabase}

	assert.Equal(t, codes.UniqueViolation, GetCode(outer))
}

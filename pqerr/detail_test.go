package pqerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailGetDetail(t *testing.T) {
	err := WithDetail(errors.New("boom"), "Key (id)=(1) already exists.")
	assert.Equal(t, "Key (id)=(1) already exists.", GetDetail(err))
}

func TestWithHintGetHint(t *testing.T) {
	err := WithHint(errors.New("boom"), "try adding a unique index")
	assert.Equal(t, "try adding a unique index", GetHint(err))
}

func TestWithConstraintNameGetConstraintName(t *testing.T) {
	err := WithConstraintName(errors.New("boom"), "users_email_key")
	assert.Equal(t, "users_email_key", GetConstraintName(err))
}

func TestDecoratorsStack(t *testing.T) {
	err := WithDetail(WithHint(errors.New("boom"), "add an index"), "duplicate key value")

	assert.Equal(t, "duplicate key value", GetDetail(err))
	assert.Equal(t, "add an index", GetHint(err))
}

package pqerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSeverityGetSeverity(t *testing.T) {
	err := WithSeverity(errors.New("boom"), LevelFatal)
	assert.Equal(t, LevelFatal, GetSeverity(err))
}

func TestGetSeverityEmptyByDefault(t *testing.T) {
	assert.Equal(t, Severity(""), GetSeverity(errors.New("boom")))
}

func TestDefaultSeverityFallsBackToError(t *testing.T) {
	assert.Equal(t, LevelError, DefaultSeverity(""))
	assert.Equal(t, LevelWarning, DefaultSeverity(LevelWarning))
}

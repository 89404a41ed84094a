package pqerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowlevl/pqcore/codes"
)

func TestNewDatabaseErrorClassification(t *testing.T) {
	err := NewDatabaseError(codes.UniqueViolation, "duplicate key", "", "", LevelError)

	var db *DatabaseError
	require.True(t, errors.As(err, &db))
	assert.Equal(t, "23", db.Class)
	assert.Equal(t, KindDatabase, GetKind(err))
}

func TestIsUniqueViolation(t *testing.T) {
	err := NewDatabaseError(codes.UniqueViolation, "duplicate key", "", "", LevelError)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsSerializationFailure(err))
}

func TestIsSerializationFailure(t *testing.T) {
	err := NewDatabaseError(codes.SerializationFailure, "could not serialize", "", "", LevelError)
	assert.True(t, IsSerializationFailure(err))
	assert.True(t, IsIntegrityViolation(NewDatabaseError(codes.ForeignKeyViolation, "fk violation", "", "", LevelError)))
}

func TestIsDataExceptionAndNotSupported(t *testing.T) {
	assert.True(t, IsDataException(NewDatabaseError(codes.DivisionByZero, "division by zero", "", "", LevelError)))
	assert.True(t, IsNotSupported(NewDatabaseError(codes.FeatureNotSupported, "not supported", "", "", LevelError)))
}

func TestIsUniqueViolationFalseForPlainError(t *testing.T) {
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestNewOperationalErrorKind(t *testing.T) {
	err := NewOperationalError("connection reset: %v", errors.New("eof"))
	assert.Equal(t, KindOperational, GetKind(err))
}

func TestNewProgrammingErrorKind(t *testing.T) {
	err := NewProgrammingError("bad placeholder")
	assert.Equal(t, KindProgramming, GetKind(err))
}

func TestNewInternalErrorKind(t *testing.T) {
	err := NewInternalError("generator produced zero results")
	assert.Equal(t, KindInternal, GetKind(err))
}

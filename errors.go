package pqcore

import "github.com/lowlevl/pqcore/pqerr"

// Re-exported so a caller working only against the facade package never
// needs a second import of pqerr just to check an error's classification.
type (
	DatabaseError = pqerr.DatabaseError
	Severity      = pqerr.Severity
)

var (
	IsUniqueViolation     = pqerr.IsUniqueViolation
	IsSerializationFailure = pqerr.IsSerializationFailure
	IsIntegrityViolation  = pqerr.IsIntegrityViolation
	IsDataException       = pqerr.IsDataException
	IsNotSupported        = pqerr.IsNotSupported
	GetKind               = pqerr.GetKind
)

const (
	KindOperational = pqerr.KindOperational
	KindInterface   = pqerr.KindInterface
	KindProgramming = pqerr.KindProgramming
	KindDatabase    = pqerr.KindDatabase
	KindInternal    = pqerr.KindInternal
)

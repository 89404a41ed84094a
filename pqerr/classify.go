package pqerr

import (
	"fmt"

	"github.com/lowlevl/pqcore/codes"
)

// DatabaseError wraps a server-side ErrorResponse. Its Code is the SQLSTATE
// reported by the backend; Class is the SQLSTATE's two-character class,
// used to pick a coarser-grained check than a Code comparison when the
// caller only cares "was this an integrity violation" rather than "was this
// specifically a unique violation".
type DatabaseError struct {
	Code     codes.Code
	Class    string
	Message  string
	Detail   string
	Hint     string
	Severity Severity
}

func (e *DatabaseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (SQLSTATE %s): %s", e.Message, e.Code, e.Detail)
	}

	return fmt.Sprintf("%s (SQLSTATE %s)", e.Message, e.Code)
}

// classRule maps a SQLSTATE class, or in a few cases a single exact code,
// to a human name used only for documentation/logging; the Code/Class
// fields on DatabaseError are what callers should branch on with
// errors.As plus a Code/Class comparison, or with the Is* helpers below.
var classRule = map[string]string{
	"22":    "data_exception",
	"23":    "integrity_constraint_violation",
	"0A":    "feature_not_supported",
	"40001": "serialization_failure",
}

// NewDatabaseError builds the DatabaseError for a server ErrorResponse,
// classifying it by SQLSTATE class per spec: 23 -> IntegrityError, 22 ->
// DataError, 40001 -> SerializationFailure, 0A -> NotSupportedError,
// anything else falls back to a plain DatabaseError.
func NewDatabaseError(code codes.Code, message, detail, hint string, severity Severity) error {
	db := &DatabaseError{
		Code:     code,
		Class:    code.Class(),
		Message:  message,
		Detail:   detail,
		Hint:     hint,
		Severity: DefaultSeverity(severity),
	}

	return WithKind(db, KindDatabase)
}

// IsUniqueViolation reports whether err is a 23505 unique_violation.
func IsUniqueViolation(err error) bool { return hasCode(err, codes.UniqueViolation) }

// IsSerializationFailure reports whether err is a 40001 serialization
// failure, the class of error that justifies a transparent retry.
func IsSerializationFailure(err error) bool { return hasCode(err, codes.SerializationFailure) }

// IsIntegrityViolation reports whether err belongs to SQLSTATE class 23.
func IsIntegrityViolation(err error) bool { return hasClass(err, "23") }

// IsDataException reports whether err belongs to SQLSTATE class 22.
func IsDataException(err error) bool { return hasClass(err, "22") }

// IsNotSupported reports whether err belongs to SQLSTATE class 0A.
func IsNotSupported(err error) bool { return hasClass(err, "0A") }

func hasCode(err error, code codes.Code) bool {
	var db *DatabaseError
	return asDatabaseError(err, &db) && db.Code == code
}

func hasClass(err error, class string) bool {
	var db *DatabaseError
	return asDatabaseError(err, &db) && db.Class == class
}

func asDatabaseError(err error, target **DatabaseError) bool {
	for err != nil {
		if db, ok := err.(*DatabaseError); ok {
			*target = db
			return true
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}

		err = u.Unwrap()
	}

	return false
}

// NewOperationalError builds a transport/authentication-level error.
func NewOperationalError(format string, args ...any) error {
	return WithKind(fmt.Errorf(format, args...), KindOperational)
}

// NewInterfaceError builds a cursor/connection lifecycle misuse error.
func NewInterfaceError(format string, args ...any) error {
	return WithKind(fmt.Errorf(format, args...), KindInterface)
}

// NewProgrammingError builds a malformed-query/misuse error.
func NewProgrammingError(format string, args ...any) error {
	return WithKind(fmt.Errorf(format, args...), KindProgramming)
}

// NewInternalError builds an error for a driver-internal invariant
// violation — something the PQ generator or facade should never produce.
func NewInternalError(format string, args ...any) error {
	return WithKind(fmt.Errorf(format, args...), KindInternal)
}

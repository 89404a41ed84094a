package pqerr

import "errors"

// WithDetail decorates err with server-supplied detail text.
func WithDetail(err error, detail string) error {
	if err == nil {
		return nil
	}

	return &withDetail{cause: err, detail: detail}
}

// GetDetail returns the detail text attached to err, or "" if none.
func GetDetail(err error) string {
	if h, ok := err.(*withDetail); ok {
		return h.detail
	}

	if n := errors.Unwrap(err); n != nil {
		return GetDetail(n)
	}

	return ""
}

type withDetail struct {
	cause  error
	detail string
}

func (w *withDetail) Error() string { return w.cause.Error() }
func (w *withDetail) Unwrap() error { return w.cause }

// WithHint decorates err with a server-supplied hint.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}

	return &withHint{cause: err, hint: hint}
}

// GetHint returns the hint attached to err, or "" if none.
func GetHint(err error) string {
	if h, ok := err.(*withHint); ok {
		return h.hint
	}

	if n := errors.Unwrap(err); n != nil {
		return GetHint(n)
	}

	return ""
}

type withHint struct {
	cause error
	hint  string
}

func (w *withHint) Error() string { return w.cause.Error() }
func (w *withHint) Unwrap() error { return w.cause }

// WithConstraintName decorates err with the name of the violated constraint.
func WithConstraintName(err error, constraint string) error {
	if err == nil {
		return nil
	}

	return &withConstraint{cause: err, constraint: constraint}
}

// GetConstraintName returns the constraint name attached to err, or "".
func GetConstraintName(err error) string {
	if c, ok := err.(*withConstraint); ok {
		return c.constraint
	}

	if n := errors.Unwrap(err); n != nil {
		if inner := GetConstraintName(n); inner != "" {
			return inner
		}
	}

	return ""
}

type withConstraint struct {
	cause      error
	constraint string
}

func (w *withConstraint) Error() string { return w.cause.Error() }
func (w *withConstraint) Unwrap() error { return w.cause }

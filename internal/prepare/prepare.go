// Package prepare implements the Query Preparer of spec §4.7: rewriting a
// client-style query (%s positional, %(name)s named placeholders) into the
// server's $1..$N positional form, plus the permutation needed to bind
// caller-supplied arguments in the order the rewritten query now expects.
package prepare

import (
	"strconv"
	"strings"

	"github.com/lowlevl/pqcore/pqerr"
)

// Prepared is the result of rewriting one query.
type Prepared struct {
	// Query is the rewritten query text, using $1..$N placeholders.
	Query string

	// Permutation maps each $N placeholder (index N-1) to the index of the
	// caller-supplied argument that should be bound there: Permutation[i]
	// is the argument index for placeholder i+1. For a query with no named
	// placeholders Permutation is the identity, since %s placeholders
	// already appear in argument order.
	Permutation []int

	// Names is non-nil when the query used %(name)s placeholders; it holds,
	// in $N order (the order names first appear in the query), the name each
	// successive positional argument came from. A query that only used
	// positional %s placeholders leaves Names nil.
	Names []string
}

// Positional rewrites a query using %s placeholders. Each %s becomes $1,
// $2, ... in appearance order; Permutation is the identity since the
// caller's argument list already matches.
func Positional(query string) (*Prepared, error) {
	var out strings.Builder
	n := 0

	if err := scan(query, &out, func() {
		n++
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	}, nil); err != nil {
		return nil, err
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	return &Prepared{Query: out.String(), Permutation: perm}, nil
}

// Named rewrites a query using %(name)s placeholders against the given
// keyword=value arguments. Each distinct name seen is assigned the next
// free $N the first time it appears and reuses it on repeat appearances —
// a named placeholder may legally appear more than once in one query,
// unlike a bare %s. Permutation[i] is the index into args (in map
// iteration order fixed by the order parameter) supplying placeholder i+1.
func Named(query string, order []string) (*Prepared, error) {
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}

	var out strings.Builder
	var perm []int
	assigned := map[string]int{}

	err := scan(query, &out, nil, func(name string) error {
		if n, ok := assigned[name]; ok {
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(n))
			return nil
		}

		argIdx, ok := index[name]
		if !ok {
			return pqerr.NewProgrammingError("prepare: placeholder %%(%s)s has no matching argument", name)
		}

		perm = append(perm, argIdx)
		n := len(perm)
		assigned[name] = n

		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(perm))
	for name, n := range assigned {
		names[n-1] = name
	}

	return &Prepared{Query: out.String(), Permutation: perm, Names: names}, nil
}

// scan walks query once, copying literal text verbatim, doubling "%%" down
// to a literal "%", and invoking onPositional for a bare "%s" or
// onNamed(name) for a "%(name)s". Exactly one of onPositional/onNamed is
// non-nil per call (Positional vs Named), and a query using the wrong kind
// of placeholder for the active mode is a ProgrammingError — spec §4.7
// treats mixing %s and %(name)s within the same query as client misuse.
func scan(query string, out *strings.Builder, onPositional func(), onNamed func(name string) error) error {
	namedMode := onNamed != nil

	i := 0
	for i < len(query) {
		c := query[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(query) {
			return pqerr.NewProgrammingError("prepare: dangling %% at end of query")
		}

		switch query[i+1] {
		case '%':
			out.WriteByte('%')
			i += 2
		case 's':
			if namedMode {
				return pqerr.NewProgrammingError("prepare: bare %%s placeholder not allowed when using named arguments")
			}
			onPositional()
			i += 2
		case '(':
			end := strings.Index(query[i+2:], ")s")
			if end == -1 {
				return pqerr.NewProgrammingError("prepare: malformed %%(name)s placeholder")
			}
			name := query[i+2 : i+2+end]
			if !namedMode {
				return pqerr.NewProgrammingError("prepare: %%(name)s placeholder not allowed when using positional arguments")
			}
			if err := onNamed(name); err != nil {
				return err
			}
			i += 2 + end + 2
		default:
			return pqerr.NewProgrammingError("prepare: unsupported placeholder %%%c", query[i+1])
		}
	}

	return nil
}

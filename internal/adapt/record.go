package adapt

import (
	"fmt"
	"strings"

	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lib/pq/oid"
)

// registerRecord wires a best-effort Loader for the anonymous record type
// (oid 2249), used for things like a CompositeType-less ROW(...) expression
// or a srf's implicit row. Unlike a registered composite (composite.go),
// nothing here knows the record's field count ahead of time, so arity has
// to be inferred from the literal itself by counting top-level commas —
// which means, per the Open Question resolved in SPEC_FULL.md §7, an
// anonymous record cannot distinguish a one-field NULL from the zero-field
// record: both are "()" and this loader reports both as zero fields. A
// caller that needs that distinction must RegisterComposite with the known
// arity instead of relying on oid 2249.
func registerRecord(r *Registry) {
	r.RegisterLoader(oid.T_record, TextFormat, LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}

		s := strings.TrimSpace(string(data))
		if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
			return nil, fmt.Errorf("adapt: malformed record literal %q", s)
		}

		body := s[1 : len(s)-1]
		if body == "" {
			return []*string{}, nil
		}

		nfields := countTopLevelFields(body)
		return wire.DecodeCompositeText(s, nfields)
	}})
}

// countTopLevelFields counts the comma-separated fields in a composite's
// body, skipping commas inside double-quoted fields so a quoted value
// containing a literal comma isn't mistaken for a field boundary.
func countTopLevelFields(body string) int {
	n := 1
	inQuotes := false

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '"':
			inQuotes = !inQuotes
		case '\\':
			if inQuotes {
				i++
			}
		case ',':
			if !inQuotes {
				n++
			}
		}
	}

	return n
}

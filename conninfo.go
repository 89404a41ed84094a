package pqcore

import (
	"strings"

	"github.com/lowlevl/pqcore/pqerr"
)

// ConnInfo is the named "conninfo/DSN parsing" collaborator from spec §6,
// scoped down to the minimal keyword=value map spec.md's Non-goals allow:
// parsing a `key=value key2=value2` string into a map, with no support for
// the full libpq URI grammar, service files, or default-value lookup.
type ConnInfo map[string]string

// ParseConnInfo parses a libpq-style "key=value key2=value2" string. A
// value containing whitespace must be single-quoted; inside quotes a
// backslash makes the next character literal (so `\'` yields a quote and
// `\\` a backslash), mirroring libpq's own conninfo grammar for exactly the
// subset this driver core needs.
func ParseConnInfo(s string) (ConnInfo, error) {
	info := ConnInfo{}

	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		keyStart := i
		for i < len(s) && s[i] != '=' && !isSpace(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			return nil, pqerr.NewProgrammingError("pqcore: conninfo: missing '=' after %q", s[keyStart:i])
		}
		key := s[keyStart:i]
		i++ // skip '='

		var value strings.Builder
		if i < len(s) && s[i] == '\'' {
			i++
			for i < len(s) && s[i] != '\'' {
				if s[i] == '\\' && i+1 < len(s) {
					value.WriteByte(s[i+1])
					i += 2
					continue
				}
				value.WriteByte(s[i])
				i++
			}
			if i >= len(s) {
				return nil, pqerr.NewProgrammingError("pqcore: conninfo: unterminated quoted value for %q", key)
			}
			i++ // skip closing quote
		} else {
			for i < len(s) && !isSpace(s[i]) {
				value.WriteByte(s[i])
				i++
			}
		}

		info[key] = value.String()
	}

	return info, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

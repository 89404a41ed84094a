package pqcore

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/lowlevl/pqcore/pqerr"
)

// pgToWHATWG maps the handful of Postgres client_encoding names this driver
// supports onto the label htmlindex.Get expects. Postgres' encoding names
// (https://www.postgresql.org/docs/current/multibyte.html) mostly, but not
// always, coincide with the WHATWG/IANA labels x/text indexes by.
var pgToWHATWG = map[string]string{
	"UTF8":     "utf-8",
	"LATIN1":   "iso-8859-1",
	"LATIN2":   "iso-8859-2",
	"LATIN9":   "iso-8859-15",
	"WIN1252":  "windows-1252",
	"WIN1251":  "windows-1251",
	"SQL_ASCII": "us-ascii",
	"KOI8R":    "koi8-r",
	"EUC_JP":   "euc-jp",
	"SJIS":     "shift_jis",
}

// resolveEncoding turns a Postgres client_encoding name, as reported by a
// ParameterStatus message, into a Go encoding.Encoding. It is re-run
// whenever the server acknowledges a `SET client_encoding` (spec §4.2's
// ParameterStatus handling).
func resolveEncoding(pgName string) (encoding.Encoding, error) {
	label, ok := pgToWHATWG[pgName]
	if !ok {
		return nil, pqerr.NewProgrammingError("pqcore: unsupported client_encoding %q", pgName)
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, pqerr.NewOperationalError("pqcore: resolving client_encoding %q: %w", pgName, err)
	}

	return enc, nil
}

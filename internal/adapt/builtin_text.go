package adapt

import (
	"github.com/lib/pq/oid"
	"golang.org/x/text/encoding"
)

// registerText wires the global-scope default for text/varchar/name: an
// identity transform at the byte level. A connection overrides this at
// connection scope with RegisterTextCodec whenever the server reports a
// client_encoding it can resolve, UTF8 included.
func registerText(r *Registry) {
	dump := DumperFunc{
		OidVal: oid.T_text,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			return []byte(v.(string)), nil
		},
	}
	load := LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		return string(data), nil
	}}

	r.RegisterDumper(typeOf[string](), TextFormat, dump)
	r.RegisterLoader(oid.T_text, TextFormat, load)
	r.RegisterLoader(oid.T_varchar, TextFormat, load)
	r.RegisterLoader(oid.T_bpchar, TextFormat, load)
	r.RegisterLoader(oid.T_name, TextFormat, load)
}

// RegisterTextCodec overrides the text/varchar/bpchar/name dumper and
// loader on r to transcode through codec instead of passing bytes through
// untouched, per spec §3: "all strings crossing the wire pass through the
// connection's client-encoding codec". The caller installs this at
// connection scope whenever client_encoding changes, so it shadows the
// identity-transform global default for that connection (and its cursors)
// without touching any other connection.
func RegisterTextCodec(r *Registry, codec encoding.Encoding) {
	dump := DumperFunc{
		OidVal: oid.T_text,
		Fmt:    TextFormat,
		Fn: func(v any) ([]byte, error) {
			return codec.NewEncoder().Bytes([]byte(v.(string)))
		},
	}
	load := LoaderFunc{Fmt: TextFormat, Fn: func(data []byte) (any, error) {
		if data == nil {
			return nil, nil
		}
		out, err := codec.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		return string(out), nil
	}}

	r.RegisterDumper(typeOf[string](), TextFormat, dump)
	r.RegisterLoader(oid.T_text, TextFormat, load)
	r.RegisterLoader(oid.T_varchar, TextFormat, load)
	r.RegisterLoader(oid.T_bpchar, TextFormat, load)
	r.RegisterLoader(oid.T_name, TextFormat, load)
}

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// CompositeBinaryField is one decoded field of a binary-format composite
// value: its declared type OID and its raw payload, or a nil payload for
// NULL.
type CompositeBinaryField struct {
	OID     uint32
	Payload []byte // nil means NULL
}

// EncodeCompositeBinary frames the binary composite layout described in
// spec §4.1: int32 field count, followed by one {uint32 oid, int32 length,
// length×bytes} tuple per field. length = -1 encodes NULL with no payload.
func EncodeCompositeBinary(fields []CompositeBinaryField) []byte {
	var buf bytes.Buffer
	var tmp [4]byte

	binary.BigEndian.PutUint32(tmp[:], uint32(len(fields)))
	buf.Write(tmp[:])

	for _, f := range fields {
		binary.BigEndian.PutUint32(tmp[:], f.OID)
		buf.Write(tmp[:])

		if f.Payload == nil {
			binary.BigEndian.PutUint32(tmp[:], 0xFFFFFFFF) // int32(-1)
			buf.Write(tmp[:])
			continue
		}

		binary.BigEndian.PutUint32(tmp[:], uint32(len(f.Payload)))
		buf.Write(tmp[:])
		buf.Write(f.Payload)
	}

	return buf.Bytes()
}

// DecodeCompositeBinary parses the binary composite layout back into its
// fields.
func DecodeCompositeBinary(data []byte) ([]CompositeBinaryField, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("wire: short composite binary payload")
	}

	n := int32(binary.BigEndian.Uint32(data[:4]))
	data = data[4:]
	fields := make([]CompositeBinaryField, 0, n)

	for i := int32(0); i < n; i++ {
		if len(data) < 8 {
			return nil, fmt.Errorf("wire: truncated composite field header")
		}

		oid := binary.BigEndian.Uint32(data[:4])
		length := int32(binary.BigEndian.Uint32(data[4:8]))
		data = data[8:]

		if length < 0 {
			fields = append(fields, CompositeBinaryField{OID: oid, Payload: nil})
			continue
		}

		if int32(len(data)) < length {
			return nil, fmt.Errorf("wire: truncated composite field payload")
		}

		fields = append(fields, CompositeBinaryField{OID: oid, Payload: data[:length]})
		data = data[length:]
	}

	return fields, nil
}

// EncodeCompositeText renders the text composite grammar from spec §4.1:
// "(field,field,...)". A field is left empty between delimiters for NULL;
// otherwise it is written unquoted unless it is empty or contains '"', ',',
// '\', '(', ')' or whitespace, in which case it is wrapped in double quotes
// with every '"' and '\' doubled.
//
// A single-field composite with a NULL value renders as "()", the same text
// as the zero-field composite; DecodeCompositeText tells them apart only by
// the field count its caller passes in (see SPEC_FULL.md §7, the resolved
// Open Question).
func EncodeCompositeText(values []*string) string {
	var b strings.Builder
	b.WriteByte('(')

	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}

		if v == nil {
			continue
		}

		b.WriteString(quoteCompositeField(*v))
	}

	b.WriteByte(')')
	return b.String()
}

func quoteCompositeField(v string) string {
	if v != "" && !strings.ContainsAny(v, "\"\\, \t\n\r()") {
		return v
	}

	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		if r == '"' || r == '\\' {
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// DecodeCompositeText tokenizes the text composite grammar back into its
// fields. nfields is the field count known from the type's registration
// (CompositeTypeInfo) — the grammar alone cannot distinguish a single-field
// composite holding NULL from the zero-field composite, both of which
// render as adjacent parentheses with nothing between them, so the caller
// must supply the arity it already knows. A nil entry denotes NULL (an
// empty, unquoted slot); an empty string entry denotes the empty string (an
// explicitly quoted "").
func DecodeCompositeText(s string, nfields int) ([]*string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("wire: malformed composite literal %q", s)
	}

	body := s[1 : len(s)-1]
	if nfields == 0 {
		return []*string{}, nil
	}

	fields := make([]*string, 0, nfields)
	i := 0
	for n := 0; n < nfields; n++ {
		field, advanced, quoted, err := scanCompositeField(body[i:])
		if err != nil {
			return nil, err
		}

		if !quoted && field == "" {
			fields = append(fields, nil)
		} else {
			v := field
			fields = append(fields, &v)
		}

		i += advanced
		if n == nfields-1 {
			break
		}

		if i >= len(body) || body[i] != ',' {
			return nil, fmt.Errorf("wire: expected %d fields, field separator missing at offset %d in %q", nfields, i, s)
		}
		i++
	}

	return fields, nil
}

// scanCompositeField reads one field starting at s[0], returning the
// unescaped value, the number of input bytes consumed (stopping right
// before the next ',' or end of string), and whether the field was quoted
// (needed to distinguish NULL from "").
func scanCompositeField(s string) (value string, consumed int, quoted bool, err error) {
	if len(s) == 0 {
		return "", 0, false, nil
	}

	if s[0] != '"' {
		end := strings.IndexByte(s, ',')
		if end == -1 {
			end = len(s)
		}
		return s[:end], end, false, nil
	}

	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			if i+1 < len(s) && s[i+1] == '"' {
				b.WriteByte('"')
				i += 2
				continue
			}
			i++
			return b.String(), i, true, nil
		}
		b.WriteByte(c)
		i++
	}

	return "", 0, false, fmt.Errorf("wire: unterminated quoted composite field in %q", s)
}

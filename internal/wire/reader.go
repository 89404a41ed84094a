package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DefaultMaxMessageSize bounds a single incoming message; messages larger
// than this are rejected rather than grown into unboundedly, mirroring the
// teacher's buffer.Reader guard against a runaway length prefix.
const DefaultMaxMessageSize = 1 << 24 // 16 MiB

// Reader accumulates bytes handed to it by the transport and exposes them as
// a sequence of fully-framed server messages. It never blocks: Next reports
// ok=false when the buffered bytes do not yet contain a whole message, at
// which point the caller (the PQ generator) yields a want-read suspension
// and feeds more bytes once the transport has some.
type Reader struct {
	buf            []byte
	MaxMessageSize int
}

// NewReader constructs an empty Reader.
func NewReader() *Reader {
	return &Reader{MaxMessageSize: DefaultMaxMessageSize}
}

// Feed appends newly received bytes to the reader's internal buffer.
func (r *Reader) Feed(data []byte) {
	r.buf = append(r.buf, data...)
}

// Buffered returns the number of unconsumed bytes.
func (r *Reader) Buffered() int { return len(r.buf) }

// Next attempts to parse one complete server message from the front of the
// buffer. It returns (msg, true, nil) on success, consuming the message's
// bytes; (nil, false, nil) when more bytes are needed; and a non-nil error
// for a malformed message (the connection must be treated as poisoned).
func (r *Reader) Next() (*Message, bool, error) {
	if len(r.buf) < 5 {
		return nil, false, nil
	}

	t := ServerMessage(r.buf[0])
	size := int(binary.BigEndian.Uint32(r.buf[1:5]))
	if size < 4 {
		return nil, false, fmt.Errorf("wire: invalid message length %d for %s", size, t)
	}

	total := size + 1 // + the leading type byte; size already counts itself
	if total > r.MaxMessageSize+5 {
		return nil, false, fmt.Errorf("wire: message of %d bytes exceeds maximum of %d", total, r.MaxMessageSize)
	}

	if len(r.buf) < total {
		return nil, false, nil
	}

	body := r.buf[5:total]
	msg, err := parseBody(t, body)
	if err != nil {
		return nil, false, err
	}

	// Slide the consumed prefix off by moving the remainder to the front of
	// the same backing array, so its capacity is reused by later Feeds
	// instead of the buffer growing without bound.
	remainder := r.buf[total:]
	if len(remainder) == 0 {
		r.buf = r.buf[:0]
	} else {
		r.buf = append(r.buf[:0], remainder...)
	}

	return msg, true, nil
}

func parseBody(t ServerMessage, body []byte) (*Message, error) {
	msg := &Message{Type: t, Raw: body}

	switch t {
	case ServerAuth:
		if len(body) < 4 {
			return nil, fmt.Errorf("wire: short Authentication message")
		}
		msg.Auth = AuthMessage{
			Type: AuthType(int32(binary.BigEndian.Uint32(body[:4]))),
			Data: body[4:],
		}
	case ServerParameterStatus:
		name, rest, err := readCString(body)
		if err != nil {
			return nil, err
		}
		value, _, err := readCString(rest)
		if err != nil {
			return nil, err
		}
		msg.ParamStatus = ParamStatusMessage{Name: name, Value: value}
	case ServerBackendKeyData:
		if len(body) < 8 {
			return nil, fmt.Errorf("wire: short BackendKeyData message")
		}
		msg.BackendKey = BackendKeyMessage{
			ProcessID: int32(binary.BigEndian.Uint32(body[:4])),
			SecretKey: int32(binary.BigEndian.Uint32(body[4:8])),
		}
	case ServerReadyForQuery:
		if len(body) < 1 {
			return nil, fmt.Errorf("wire: short ReadyForQuery message")
		}
		msg.ReadyForQuery = ReadyForQueryMessage{Status: TransactionStatus(body[0])}
	case ServerRowDescription:
		descr, err := parseRowDescription(body)
		if err != nil {
			return nil, err
		}
		msg.RowDescr = descr
	case ServerDataRow:
		row, err := parseDataRow(body)
		if err != nil {
			return nil, err
		}
		msg.DataRow = row
	case ServerCommandComplete:
		tag, _, err := readCString(body)
		if err != nil {
			return nil, err
		}
		msg.CommandTag = tag
	case ServerErrorResponse, ServerNoticeResponse:
		fields, err := parseErrorFields(body)
		if err != nil {
			return nil, err
		}
		msg.ErrorOrNotice = fields
	case ServerEmptyQueryResponse, ServerParseComplete, ServerBindComplete,
		ServerCloseComplete, ServerNoData, ServerPortalSuspended,
		ServerCopyInResponse, ServerCopyOutResponse, ServerCopyBothResponse,
		ServerCopyData, ServerCopyDone, ServerParameterDescription:
		// Body retained verbatim in msg.Raw; the protocol state machine
		// only needs these messages' presence, not further decoding.
	}

	return msg, nil
}

func readCString(b []byte) (s string, rest []byte, err error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), b[i+1:], nil
		}
	}

	return "", nil, fmt.Errorf("wire: missing NUL terminator")
}

func parseRowDescription(body []byte) (RowDescription, error) {
	if len(body) < 2 {
		return RowDescription{}, fmt.Errorf("wire: short RowDescription message")
	}

	n := int(binary.BigEndian.Uint16(body[:2]))
	body = body[2:]
	fields := make([]FieldDescriptor, 0, n)

	for i := 0; i < n; i++ {
		name, rest, err := readCString(body)
		if err != nil {
			return RowDescription{}, err
		}
		body = rest

		if len(body) < 18 {
			return RowDescription{}, fmt.Errorf("wire: truncated RowDescription field")
		}

		fields = append(fields, FieldDescriptor{
			Name:         name,
			TableOID:     binary.BigEndian.Uint32(body[0:4]),
			ColumnAttrNo: int16(binary.BigEndian.Uint16(body[4:6])),
			TypeOID:      binary.BigEndian.Uint32(body[6:10]),
			TypeLen:      int16(binary.BigEndian.Uint16(body[10:12])),
			TypeMod:      int32(binary.BigEndian.Uint32(body[12:16])),
			Format:       FormatCode(int16(binary.BigEndian.Uint16(body[16:18]))),
		})
		body = body[18:]
	}

	return RowDescription{Fields: fields}, nil
}

func parseDataRow(body []byte) (DataRowMessage, error) {
	if len(body) < 2 {
		return DataRowMessage{}, fmt.Errorf("wire: short DataRow message")
	}

	n := int(binary.BigEndian.Uint16(body[:2]))
	body = body[2:]
	values := make([][]byte, 0, n)

	for i := 0; i < n; i++ {
		if len(body) < 4 {
			return DataRowMessage{}, fmt.Errorf("wire: truncated DataRow value length")
		}

		size := int32(binary.BigEndian.Uint32(body[:4]))
		body = body[4:]

		if size < 0 {
			values = append(values, nil)
			continue
		}

		if len(body) < int(size) {
			return DataRowMessage{}, fmt.Errorf("wire: truncated DataRow value")
		}

		// Clone out of the reader's backing array: Next reslices r.buf in
		// place on every subsequent call, and a DataRow parked unparsed
		// across that reslide would otherwise see its bytes overwritten
		// before the cursor ever decodes it.
		values = append(values, bytes.Clone(body[:size]))
		body = body[size:]
	}

	return DataRowMessage{Values: values}, nil
}

func parseErrorFields(body []byte) (ErrorFields, error) {
	var fields ErrorFields

	for len(body) > 0 {
		code := body[0]
		body = body[1:]
		if code == 0 {
			break
		}

		value, rest, err := readCString(body)
		if err != nil {
			return ErrorFields{}, err
		}
		body = rest

		switch code {
		case 'S':
			fields.Severity = value
		case 'C':
			fields.Code = value
		case 'M':
			fields.Message = value
		case 'D':
			fields.Detail = value
		case 'H':
			fields.Hint = value
		case 'n':
			fields.ConstraintName = value
		}
	}

	return fields, nil
}

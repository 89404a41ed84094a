package testtransport

import (
	"bytes"
	"encoding/binary"
)

// FakeServer frames raw backend messages onto a Pipe, standing in for a
// live Postgres server in generator/waiting-strategy tests. It only knows
// enough of the wire format to write the messages the driver core's tests
// need; it is not a Wire Codec implementation and is not meant to be one.
type FakeServer struct {
	conn *Pipe
}

// NewFakeServer wraps conn (the server-side end of a Pipe pair) as a
// message source a test can script.
func NewFakeServer(conn *Pipe) *FakeServer {
	return &FakeServer{conn: conn}
}

func (s *FakeServer) send(typ byte, body []byte) {
	var buf bytes.Buffer
	buf.WriteByte(typ)

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(body)+4))
	buf.Write(length[:])
	buf.Write(body)

	_, _ = s.conn.Send(buf.Bytes())
}

// AuthenticationOK writes AuthenticationOK ('R', type 0).
func (s *FakeServer) AuthenticationOK() {
	var body [4]byte
	s.send('R', body[:])
}

// AuthenticationCleartextPassword writes AuthenticationCleartextPassword
// ('R', type 3).
func (s *FakeServer) AuthenticationCleartextPassword() {
	var body [4]byte
	binary.BigEndian.PutUint32(body[:], 3)
	s.send('R', body[:])
}

// AuthenticationMD5Password writes AuthenticationMD5Password ('R', type 5)
// with the given 4-byte salt.
func (s *FakeServer) AuthenticationMD5Password(salt [4]byte) {
	body := make([]byte, 8)
	binary.BigEndian.PutUint32(body[:4], 5)
	copy(body[4:], salt[:])
	s.send('R', body)
}

// ParameterStatus writes a ParameterStatus ('S') message.
func (s *FakeServer) ParameterStatus(name, value string) {
	var body []byte
	body = append(body, name...)
	body = append(body, 0)
	body = append(body, value...)
	body = append(body, 0)
	s.send('S', body)
}

// BackendKeyData writes a BackendKeyData ('K') message.
func (s *FakeServer) BackendKeyData(processID, secretKey int32) {
	body := make([]byte, 8)
	binary.BigEndian.PutUint32(body[:4], uint32(processID))
	binary.BigEndian.PutUint32(body[4:], uint32(secretKey))
	s.send('K', body)
}

// ReadyForQuery writes a ReadyForQuery ('Z') message with the given
// transaction status byte ('I', 'T', or 'E').
func (s *FakeServer) ReadyForQuery(status byte) {
	s.send('Z', []byte{status})
}

// ErrorResponse writes a minimal ErrorResponse ('E') carrying severity,
// SQLSTATE code and message fields.
func (s *FakeServer) ErrorResponse(severity, code, message string) {
	var body []byte
	body = append(body, 'S')
	body = append(body, severity...)
	body = append(body, 0)
	body = append(body, 'C')
	body = append(body, code...)
	body = append(body, 0)
	body = append(body, 'M')
	body = append(body, message...)
	body = append(body, 0)
	body = append(body, 0)
	s.send('E', body)
}

// RowDescription writes a RowDescription ('T') message for the given
// column names, each reported with the given type oid and text format.
func (s *FakeServer) RowDescription(names []string, oids []uint32) {
	var body []byte
	count := make([]byte, 2)
	binary.BigEndian.PutUint16(count, uint16(len(names)))
	body = append(body, count...)

	for i, name := range names {
		body = append(body, name...)
		body = append(body, 0)

		field := make([]byte, 18)
		binary.BigEndian.PutUint32(field[0:4], 0)            // table oid
		binary.BigEndian.PutUint16(field[4:6], 0)             // column attr no
		binary.BigEndian.PutUint32(field[6:10], oids[i])      // type oid
		binary.BigEndian.PutUint16(field[10:12], 0xFFFF)      // type len (varlena)
		binary.BigEndian.PutUint32(field[12:16], 0xFFFFFFFF)  // type mod
		binary.BigEndian.PutUint16(field[16:18], 0)           // format: text
		body = append(body, field...)
	}

	s.send('T', body)
}

// DataRow writes a DataRow ('D') message. A nil entry in values encodes
// SQL NULL.
func (s *FakeServer) DataRow(values [][]byte) {
	var body []byte
	count := make([]byte, 2)
	binary.BigEndian.PutUint16(count, uint16(len(values)))
	body = append(body, count...)

	for _, v := range values {
		length := make([]byte, 4)
		if v == nil {
			binary.BigEndian.PutUint32(length, 0xFFFFFFFF)
			body = append(body, length...)
			continue
		}

		binary.BigEndian.PutUint32(length, uint32(len(v)))
		body = append(body, length...)
		body = append(body, v...)
	}

	s.send('D', body)
}

// CommandComplete writes a CommandComplete ('C') message with the given tag.
func (s *FakeServer) CommandComplete(tag string) {
	s.send('C', append([]byte(tag), 0))
}

// ParseComplete writes a ParseComplete ('1') message, acknowledging an
// extended query's Parse step.
func (s *FakeServer) ParseComplete() {
	s.send('1', nil)
}

// BindComplete writes a BindComplete ('2') message, acknowledging an
// extended query's Bind step.
func (s *FakeServer) BindComplete() {
	s.send('2', nil)
}

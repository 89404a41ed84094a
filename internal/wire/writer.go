package wire

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates the bytes of one outgoing message. Unlike the
// teacher's buffer.Writer it never owns an io.Writer of its own: message
// returns the framed message bytes so the caller (the PQ generator) can
// append them to its own outbound queue and hand them to the Transport
// collaborator only once that transport reports writable.
type Writer struct {
	frame  bytes.Buffer
	putbuf [8]byte
}

// Start resets the writer and begins a new message of the given type. A
// startup-style message (no leading type byte) is begun by passing 0.
func (w *Writer) Start(t ClientMessage) {
	w.frame.Reset()
	if t != 0 {
		w.frame.WriteByte(byte(t))
	}
	w.frame.Write(w.putbuf[:4]) // reserve length, patched in message
}

func (w *Writer) AddByte(b byte) { w.frame.WriteByte(b) }

func (w *Writer) AddInt16(v int16) {
	binary.BigEndian.PutUint16(w.putbuf[:2], uint16(v))
	w.frame.Write(w.putbuf[:2])
}

func (w *Writer) AddInt32(v int32) {
	binary.BigEndian.PutUint32(w.putbuf[:4], uint32(v))
	w.frame.Write(w.putbuf[:4])
}

func (w *Writer) AddUint32(v uint32) {
	binary.BigEndian.PutUint32(w.putbuf[:4], v)
	w.frame.Write(w.putbuf[:4])
}

func (w *Writer) AddBytes(b []byte) { w.frame.Write(b) }

func (w *Writer) AddString(s string) { w.frame.WriteString(s) }

func (w *Writer) AddCString(s string) {
	w.frame.WriteString(s)
	w.frame.WriteByte(0)
}

// message frames the reserved length prefix at offset off (0 for a
// startup-style packet, 1 for a typed packet) and returns the bytes.
func (w *Writer) message(off int) []byte {
	b := w.frame.Bytes()
	binary.BigEndian.PutUint32(b[off:off+4], uint32(len(b)-off))
	return b
}

// FrameStartup builds a StartupMessage: protocol version followed by
// NUL-terminated key/value pairs, terminated by an extra NUL byte.
func FrameStartup(params map[string]string) []byte {
	var w Writer
	w.Start(0)
	w.AddUint32(uint32(Version30))
	for k, v := range params {
		w.AddCString(k)
		w.AddCString(v)
	}
	w.AddByte(0)
	return w.message(0)
}

// FrameSSLRequest builds the pseudo-startup packet that requests SSL/TLS
// negotiation before the real startup packet is sent.
func FrameSSLRequest() []byte {
	var w Writer
	w.Start(0)
	w.AddUint32(uint32(VersionSSLRequest))
	return w.message(0)
}

// FrameCancelRequest builds the out-of-band cancel packet sent over a
// second, transient connection using the cancel key issued at startup.
func FrameCancelRequest(processID, secretKey int32) []byte {
	var w Writer
	w.Start(0)
	w.AddUint32(uint32(VersionCancel))
	w.AddInt32(processID)
	w.AddInt32(secretKey)
	return w.message(0)
}

// FramePassword builds a PasswordMessage carrying a cleartext or
// already-hashed (MD5) response, per whichever Authentication challenge
// the server issued.
func FramePassword(response string) []byte {
	var w Writer
	w.Start(ClientPassword)
	w.AddCString(response)
	return w.message(1)
}

// FrameQuery builds a simple-query message: one SQL string, no out-of-band
// parameters. Used whenever Execute is called without parameters.
func FrameQuery(sql string) []byte {
	var w Writer
	w.Start(ClientQuery)
	w.AddCString(sql)
	return w.message(1)
}

// FrameTerminate builds a Terminate message.
func FrameTerminate() []byte {
	var w Writer
	w.Start(ClientTerminate)
	return w.message(1)
}

// FrameSync builds a Sync message, the resynchronization point at the end
// of an extended-query message series.
func FrameSync() []byte {
	var w Writer
	w.Start(ClientSync)
	return w.message(1)
}

// ExtendedQuery is the fully-assembled Parse+Bind+Describe+Execute+Sync
// sequence sent for a parameterized query.
type ExtendedQuery struct {
	SQL           string
	ParamFormats  []FormatCode
	ParamValues   [][]byte // nil entry = SQL NULL
	ParamTypeOIDs []uint32 // 0 = unspecified, let the server infer
	ResultFormat  FormatCode
}

// FrameExtendedQuery builds the five-message extended-query sequence as one
// concatenated byte slice: Parse (unnamed statement), Bind (unnamed
// portal), Describe (portal), Execute (unnamed portal, no row limit), Sync.
func FrameExtendedQuery(q ExtendedQuery) []byte {
	var out bytes.Buffer

	var w Writer
	w.Start(ClientParse)
	w.AddCString("")
	w.AddCString(q.SQL)
	w.AddInt16(int16(len(q.ParamTypeOIDs)))
	for _, oid := range q.ParamTypeOIDs {
		w.AddUint32(oid)
	}
	out.Write(w.message(1))

	w.Start(ClientBind)
	w.AddCString("")
	w.AddCString("")
	w.AddInt16(int16(len(q.ParamFormats)))
	for _, f := range q.ParamFormats {
		w.AddInt16(int16(f))
	}
	w.AddInt16(int16(len(q.ParamValues)))
	for _, v := range q.ParamValues {
		if v == nil {
			w.AddInt32(-1)
			continue
		}
		w.AddInt32(int32(len(v)))
		w.AddBytes(v)
	}
	w.AddInt16(1)
	w.AddInt16(int16(q.ResultFormat))
	out.Write(w.message(1))

	w.Start(ClientDescribe)
	w.AddByte('P')
	w.AddCString("")
	out.Write(w.message(1))

	w.Start(ClientExecute)
	w.AddCString("")
	w.AddUint32(0)
	out.Write(w.message(1))

	out.Write(FrameSync())

	return out.Bytes()
}

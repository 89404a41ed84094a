package pqcore

import "github.com/lowlevl/pqcore/internal/protocol"

// Transport is the named external collaborator from spec §6: raw
// non-blocking byte transfer over whatever actually carries the
// connection (TCP, TLS, a Unix socket). Supplying real sockets and OS
// polling is out of scope for this module — a caller wires its own
// Transport implementation in through WithTransport.
type Transport = protocol.Transport

// ErrWouldBlock is returned by a Transport's Send/Recv to signal that the
// call could not complete without blocking.
var ErrWouldBlock = protocol.ErrWouldBlock

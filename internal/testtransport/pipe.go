// Package testtransport provides an in-memory protocol.Transport pair for
// exercising the PQ generator and waiting strategies without a live
// server, the client-side analogue of the teacher's internal/mock package
// (which drives a real net.Conn pair for the server under test).
package testtransport

import (
	"io"
	"sync"

	"github.com/lowlevl/pqcore/internal/protocol"
)

// Pipe is one end of a pair of in-memory, non-blocking transports. Bytes
// written with Send on one end become readable with Recv on the other.
// Unlike a real socket there is no descriptor to watch; Fd always returns 0,
// which is why tests drive a Pipe with protocol.SpinPoller rather than a
// real reactor.
type Pipe struct {
	mu     sync.Mutex
	inbox  []byte
	peer   *Pipe
	closed bool
}

// NewPipePair returns two connected Pipes: bytes sent on a are received on
// b, and vice versa.
func NewPipePair() (a, b *Pipe) {
	a = &Pipe{}
	b = &Pipe{}
	a.peer = b
	b.peer = a
	return a, b
}

var _ protocol.Transport = (*Pipe)(nil)

func (p *Pipe) Fd() uintptr { return 0 }

func (p *Pipe) Send(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}

	p.peer.mu.Lock()
	p.peer.inbox = append(p.peer.inbox, b...)
	p.peer.mu.Unlock()

	return len(b), nil
}

func (p *Pipe) Recv(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.inbox) == 0 {
		if p.closed {
			return 0, io.EOF
		}
		return 0, protocol.ErrWouldBlock
	}

	n := copy(buf, p.inbox)
	p.inbox = p.inbox[n:]
	return n, nil
}

func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

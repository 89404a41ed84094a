package protocol

import (
	"time"

	"github.com/lowlevl/pqcore/pqerr"
)

// Poller is the synchronous waiting strategy's readiness primitive: block
// the calling goroutine until fd is ready for wait, or timeout elapses.
// Real implementations wrap an OS poll/select call on the Transport's
// descriptor; that integration is out of scope here (spec §1) — Poller is
// the named seam a caller supplies it through.
type Poller interface {
	Poll(fd uintptr, wait Wait, timeout time.Duration) (Ready, error)
}

// SpinPoller is a minimal Poller for Transports (such as an in-memory test
// double) that have no real descriptor to block on: it retries the
// Generator's step after a short backoff instead of blocking on fd. It is
// the default synchronous strategy for tests and for transports that
// signal would-block purely through ErrWouldBlock.
type SpinPoller struct {
	// Interval between retries. Defaults to 200µs if zero.
	Interval time.Duration
}

func (p SpinPoller) Poll(fd uintptr, wait Wait, timeout time.Duration) (Ready, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = 200 * time.Microsecond
	}

	time.Sleep(interval)

	switch wait {
	case WaitRead:
		return ReadyRead, nil
	case WaitWrite:
		return ReadyWrite, nil
	default:
		return ReadyReadWrite, nil
	}
}

// RunBlocking drives generator to completion using poller as the readiness
// primitive, per spec §4.4's synchronous waiting strategy: block, resume,
// repeat until the generator returns. A zero timeout means wait forever.
func RunBlocking(gen *Generator, poller Poller, timeout time.Duration) ([]Result, error) {
	if poller == nil {
		poller = SpinPoller{}
	}

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	ready := ReadyReadWrite
	for {
		fd, wait, done, err := gen.Step(ready)
		if done {
			return gen.Results(), err
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			gen.state.Poison()
			return nil, pqerr.NewOperationalError("protocol: timed out waiting for %s", wait)
		}

		r, perr := poller.Poll(fd, wait, timeout)
		if perr != nil {
			gen.state.Poison()
			return nil, pqerr.NewOperationalError("protocol: poll failed: %w", perr)
		}

		ready = r
	}
}

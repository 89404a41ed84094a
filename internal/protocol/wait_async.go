package protocol

import (
	"context"

	"github.com/lowlevl/pqcore/pqerr"
)

// Reactor is the cooperative-concurrency waiting strategy's readiness
// primitive (spec §4.4's second strategy): instead of blocking the calling
// goroutine on a descriptor, Await suspends only the calling goroutine —
// typically backed by a single shared epoll/kqueue loop running in its own
// goroutine and a channel per waiter — letting many Generators make
// progress over one reactor thread.
type Reactor interface {
	Await(ctx context.Context, fd uintptr, wait Wait) (Ready, error)
}

// RunCooperative drives generator to completion using reactor, suspending
// on ctx at every wait point instead of blocking the OS thread. Per spec
// §4.4 this is the strategy async/cooperative callers use to run many
// connections concurrently on one goroutine's readiness loop; per spec §5,
// ctx cancellation here only stops this call from waiting further — it does
// not by itself cancel the in-flight server request. When ctx is done (or
// the reactor fails) RunCooperative poisons the connection state itself;
// it sends no out-of-band Cancel request.
func RunCooperative(ctx context.Context, gen *Generator, reactor Reactor) ([]Result, error) {
	ready := ReadyReadWrite
	for {
		fd, wait, done, err := gen.Step(ready)
		if done {
			return gen.Results(), err
		}

		select {
		case <-ctx.Done():
			gen.state.Poison()
			return nil, pqerr.NewOperationalError("protocol: %w", ctx.Err())
		default:
		}

		r, awaitErr := reactor.Await(ctx, fd, wait)
		if awaitErr != nil {
			gen.state.Poison()
			return nil, pqerr.NewOperationalError("protocol: reactor await failed: %w", awaitErr)
		}

		ready = r
	}
}

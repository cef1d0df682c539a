// Package barrier provides a one-shot rendezvous for a fixed set of goroutines.
package barrier

import "sync"

// Barrier blocks every caller of Wait until parties callers have arrived.
// It fires once; it cannot be reset.
type Barrier struct {
	mu      sync.Mutex
	parties int
	arrived int
	action  func()
	release chan struct{}
}

// New returns a barrier for parties goroutines. If action is non-nil it is
// run by the last arrival before any waiter is released.
func New(parties int, action func()) *Barrier {
	return &Barrier{
		parties: parties,
		action:  action,
		release: make(chan struct{}),
	}
}

// Wait blocks until all parties have called Wait. Calling it more than
// parties times panics.
func (b *Barrier) Wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived > b.parties {
		b.mu.Unlock()
		panic("barrier: more arrivals than parties")
	}
	last := b.arrived == b.parties
	b.mu.Unlock()

	if last {
		if b.action != nil {
			b.action()
		}
		close(b.release)
		return
	}
	<-b.release
}

// Done returns a channel closed once the barrier has fired.
func (b *Barrier) Done() <-chan struct{} {
	return b.release
}

// Waiting returns the number of goroutines that have arrived so far.
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived
}

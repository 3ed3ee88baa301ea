// Package barrier provides a reusable all-of-N rendezvous primitive.
package barrier

import "sync"

// Barrier blocks each arriving goroutine until n distinct arrivals have
// occurred, then releases them all and begins a fresh cycle. It tolerates
// unlimited cycles: a goroutine released at cycle g that immediately
// re-enters at cycle g+1 cannot prematurely release a goroutine still
// waiting from cycle g, because waiters block on the generation counter
// rather than on the arrival count.
//
// A barrier sized larger than the number of goroutines that ever arrive
// deadlocks; sizing is the caller's responsibility.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	count      int
	generation uint64
	n          int
}

// New returns a barrier for n goroutines.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Arrive blocks until n goroutines have arrived in the current cycle.
func (b *Barrier) Arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.count++
	if b.count < b.n {
		for gen == b.generation {
			b.cond.Wait()
		}
		return
	}

	// Last arrival: open the next cycle and release everyone.
	b.count = 0
	b.generation++
	b.cond.Broadcast()
}

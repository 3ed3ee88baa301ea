package mapreduce

import (
	"sync"
	"sync/atomic"

	"github.com/tamirms/mapreduce/internal/barrier"
	"github.com/tamirms/mapreduce/internal/jobstate"
)

// jobContext aggregates everything the workers of one job share: the
// borrowed input and output, the per-worker intermediate buffers, the
// shuffled groups, the dispatch counters, the barrier, and the progress
// word. It is referenced only by the worker goroutines and (through Job)
// by pollers; once the workers return and Close drops the handle's
// reference, the whole job becomes collectible.
type jobContext[K1, V1, K2, V2, K3, V3 any] struct {
	client Client[K1, V1, K2, V2, K3, V3]
	less   Less[K2]

	input  []Pair[K1, V1]  // read-only for the duration of the job
	output *[]Pair[K3, V3] // append-only, serialized by outMu
	outMu  sync.Mutex

	// One buffer per worker. During map and sort each buffer is touched
	// only by its owning worker; during shuffle only by the coordinator.
	intermediates [][]Pair[K2, V2]

	// Shuffled groups, in descending key order by construction. Written
	// only by the coordinator between the two barriers, read-only after.
	groups [][]Pair[K2, V2]

	nextInput  atomic.Uint32 // dynamic map dispatch
	nextReduce atomic.Uint32 // dynamic reduce dispatch
	shuffled   atomic.Uint32 // groups formed so far; final value bounds reduce

	barrier *barrier.Barrier
	state   jobstate.Word
}

func newJobContext[K1, V1, K2, V2, K3, V3 any](
	client Client[K1, V1, K2, V2, K3, V3],
	input []Pair[K1, V1],
	output *[]Pair[K3, V3],
	less Less[K2],
	workers int,
	cfg *jobConfig,
) *jobContext[K1, V1, K2, V2, K3, V3] {
	c := &jobContext[K1, V1, K2, V2, K3, V3]{
		client:        client,
		less:          less,
		input:         input,
		output:        output,
		intermediates: make([][]Pair[K2, V2], workers),
		barrier:       barrier.New(workers),
	}
	if cfg.bufferCap > 0 {
		for i := range c.intermediates {
			c.intermediates[i] = make([]Pair[K2, V2], 0, cfg.bufferCap)
		}
	}
	c.state.Reset(uint32(len(input)))
	return c
}

// intermediateSink returns the emit function handed to Map on the given
// worker. Appends are lock-free: each worker owns its buffer exclusively
// during the map phase.
func (c *jobContext[K1, V1, K2, V2, K3, V3]) intermediateSink(worker int) func(K2, V2) {
	return func(key K2, value V2) {
		c.intermediates[worker] = append(c.intermediates[worker], Pair[K2, V2]{Key: key, Value: value})
	}
}

// outputSink returns the emit function handed to Reduce. Appends to the
// caller's output container are serialized by the output mutex.
func (c *jobContext[K1, V1, K2, V2, K3, V3]) outputSink() func(K3, V3) {
	return func(key K3, value V3) {
		c.outMu.Lock()
		*c.output = append(*c.output, Pair[K3, V3]{Key: key, Value: value})
		c.outMu.Unlock()
	}
}

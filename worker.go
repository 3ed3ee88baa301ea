package mapreduce

import (
	"slices"

	"github.com/tamirms/mapreduce/internal/jobstate"
)

// coordinator is the worker that performs the single-threaded shuffle and
// publishes the stage transitions.
const coordinator = 0

// run is the body of one worker goroutine:
//
//  1. Dynamic map dispatch over the input batch.
//  2. Sort of the worker's own intermediate buffer.
//  3. Barrier: shuffle needs every buffer populated and sorted.
//  4. The coordinator merges all buffers into shuffled groups.
//  5. Barrier: reduce needs the groups and the reduce total published.
//  6. Dynamic reduce dispatch over the shuffled groups.
func (c *jobContext[K1, V1, K2, V2, K3, V3]) run(worker int) {
	c.mapPhase(worker)
	c.sortPhase(worker)

	c.barrier.Arrive()

	if worker == coordinator {
		c.state.SetStage(jobstate.Shuffle)
		c.shufflePhase()
		c.state.Store(jobstate.Reduce, 0, c.shuffled.Load())
	}

	c.barrier.Arrive()

	c.reducePhase()
}

// mapPhase pulls input indices off the shared counter until the batch is
// exhausted. Relaxed claim ordering is fine: the input is read-only and an
// index, once fetched, belongs to exactly one worker.
func (c *jobContext[K1, V1, K2, V2, K3, V3]) mapPhase(worker int) {
	if worker == coordinator {
		// Only the coordinator publishes the transition, so the stage is
		// stored exactly once. Workers that start mapping before the store
		// lands only delay the observable transition, never corrupt it.
		c.state.SetStage(jobstate.Map)
	}

	emit := c.intermediateSink(worker)
	for {
		idx := c.nextInput.Add(1) - 1
		if idx >= uint32(len(c.input)) {
			return
		}
		in := c.input[idx]
		c.client.Map(in.Key, in.Value, emit)
		c.state.IncrementProcessed()
	}
}

// sortPhase orders the worker's own buffer ascending by key. No locking:
// the buffer has a single owner until the barrier. The sort need not be
// stable; equivalent keys regroup during shuffle regardless of their order
// here.
func (c *jobContext[K1, V1, K2, V2, K3, V3]) sortPhase(worker int) {
	slices.SortFunc(c.intermediates[worker], func(a, b Pair[K2, V2]) int {
		switch {
		case c.less(a.Key, b.Key):
			return -1
		case c.less(b.Key, a.Key):
			return 1
		default:
			return 0
		}
	})
}

// shufflePhase drains the sorted per-worker buffers from the back into
// groups of equivalent keys. Each pass finds the greatest back key across
// all buffers, then moves every back pair equivalent to it into a fresh
// group, so groups come out in descending key order and every pair lands in
// exactly one group.
//
// The repeated scan is O(groups x workers); a heap over buffer tails would
// beat it for huge key cardinality, but buffers are few and the scan keeps
// the drain logic trivial.
func (c *jobContext[K1, V1, K2, V2, K3, V3]) shufflePhase() {
	total := 0
	for _, buf := range c.intermediates {
		total += len(buf)
	}
	c.state.SetTotal(uint32(total))

	for {
		// Find the greatest key at the back of any non-empty buffer.
		maxBuf := -1
		var maxKey K2
		for i, buf := range c.intermediates {
			if len(buf) == 0 {
				continue
			}
			candidate := buf[len(buf)-1].Key
			if maxBuf < 0 || c.less(maxKey, candidate) {
				maxBuf = i
				maxKey = candidate
			}
		}
		if maxBuf < 0 {
			return // all buffers drained
		}

		var group []Pair[K2, V2]
		for i, buf := range c.intermediates {
			for len(buf) > 0 {
				back := buf[len(buf)-1]
				if c.less(back.Key, maxKey) || c.less(maxKey, back.Key) {
					break
				}
				group = append(group, back)
				buf = buf[:len(buf)-1]
				c.state.IncrementProcessed()
			}
			c.intermediates[i] = buf
		}

		c.groups = append(c.groups, group)
		c.shuffled.Add(1)
	}
}

// reducePhase pulls group indices off the shared counter until all groups
// are consumed. The shuffled count is final by the time any worker gets
// here (published before the second barrier).
func (c *jobContext[K1, V1, K2, V2, K3, V3]) reducePhase() {
	emit := c.outputSink()
	numGroups := c.shuffled.Load()
	for {
		idx := c.nextReduce.Add(1) - 1
		if idx >= numGroups {
			return
		}
		c.client.Reduce(c.groups[idx], emit)
		c.state.IncrementProcessed()
	}
}

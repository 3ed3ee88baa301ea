// Package jobstate provides the packed job-progress word.
//
// A single atomic 64-bit value encodes the (stage, processed, total) triple:
// bits 63..62 hold the stage, bits 61..31 the processed count, bits 30..0 the
// total. Packing all three fields into one word lets any reader take a
// self-consistent snapshot with a single load, while writers race only on the
// CAS. The word is purely informational and gates no other memory.
package jobstate

import "sync/atomic"

// Stage identifies the phase a job is currently executing.
type Stage uint8

// Stages in pipeline order. A job starts Undefined and moves monotonically
// through Map, Shuffle, and Reduce.
const (
	Undefined Stage = 0
	Map       Stage = 1
	Shuffle   Stage = 2
	Reduce    Stage = 3
)

func (s Stage) String() string {
	switch s {
	case Map:
		return "map"
	case Shuffle:
		return "shuffle"
	case Reduce:
		return "reduce"
	default:
		return "undefined"
	}
}

const (
	stageShift     = 62
	processedShift = 31

	stageMask = 0x3

	// MaxCount is the largest processed or total value the 31-bit fields
	// can represent.
	MaxCount = 1<<31 - 1
)

// Word is the packed progress word. The zero value decodes to
// (Undefined, 0, 0); use Reset to publish an initial total.
type Word struct {
	v atomic.Uint64
}

// Reset stores (Undefined, 0, total), the state of a job before any worker
// has begun the map phase.
func (w *Word) Reset(total uint32) {
	w.v.Store(encode(Undefined, 0, total))
}

// Snapshot returns a self-consistent (stage, processed, total) triple.
func (w *Word) Snapshot() (Stage, uint32, uint32) {
	return decode(w.v.Load())
}

// IncrementProcessed atomically adds one to the processed count, preserving
// stage and total. Safe to call from any worker.
func (w *Word) IncrementProcessed() {
	for {
		old := w.v.Load()
		stage, processed, total := decode(old)
		if w.v.CompareAndSwap(old, encode(stage, processed+1, total)) {
			return
		}
	}
}

// SetTotal stores a new total and resets processed to zero, preserving the
// current stage. Called only by the coordinator at a stage boundary.
func (w *Word) SetTotal(total uint32) {
	for {
		old := w.v.Load()
		stage, _, _ := decode(old)
		if w.v.CompareAndSwap(old, encode(stage, 0, total)) {
			return
		}
	}
}

// SetStage stores a new stage and resets processed to zero, preserving the
// current total. Called only by the coordinator.
func (w *Word) SetStage(stage Stage) {
	for {
		old := w.v.Load()
		_, _, total := decode(old)
		if w.v.CompareAndSwap(old, encode(stage, 0, total)) {
			return
		}
	}
}

// Store publishes all three fields in one release store. Used for stage
// transitions where both the stage and the total change together.
func (w *Word) Store(stage Stage, processed, total uint32) {
	w.v.Store(encode(stage, processed, total))
}

func encode(stage Stage, processed, total uint32) uint64 {
	return uint64(stage&stageMask)<<stageShift |
		uint64(processed&MaxCount)<<processedShift |
		uint64(total&MaxCount)
}

func decode(v uint64) (Stage, uint32, uint32) {
	stage := Stage(v >> stageShift & stageMask)
	processed := uint32(v >> processedShift & MaxCount)
	total := uint32(v & MaxCount)
	return stage, processed, total
}

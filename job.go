package mapreduce

import (
	"sync"

	"github.com/google/uuid"

	mrerrors "github.com/tamirms/mapreduce/errors"
	"github.com/tamirms/mapreduce/internal/jobstate"
)

// Stage identifies the phase a job is currently executing.
type Stage = jobstate.Stage

// Stages in pipeline order.
const (
	UndefinedStage = jobstate.Undefined
	MapStage       = jobstate.Map
	ShuffleStage   = jobstate.Shuffle
	ReduceStage    = jobstate.Reduce
)

// MaxInputs is the largest input batch a job accepts, bounded by the 31-bit
// counter fields of the packed progress word.
const MaxInputs = jobstate.MaxCount

// JobState is one observation of a running job's progress.
type JobState struct {
	Stage      Stage
	Percentage float32 // in [0, 100]
}

// stateSnapshotter is the non-generic view of a job context held by the
// handle. It keeps the context reachable for polling without the handle
// having to carry the job's type parameters.
type stateSnapshotter interface {
	snapshot() (Stage, uint32, uint32)
}

func (c *jobContext[K1, V1, K2, V2, K3, V3]) snapshot() (Stage, uint32, uint32) {
	return c.state.Snapshot()
}

// Job is an opaque handle to a running job. The nil *Job is a valid handle
// to a vacuously complete job: State reports the reduce stage at 100% and
// Wait and Close are no-ops.
type Job struct {
	id uuid.UUID

	// ctx is the running job's context; nil after Close releases it.
	// Guarded by mu, which is never held across a blocking operation so
	// State stays non-blocking.
	mu  sync.Mutex
	ctx stateSnapshotter

	done []chan struct{} // one per worker, closed when the worker returns

	joinMu sync.Mutex // guards joined
	joined []bool
}

// startMu serializes Start process-wide so concurrent starts do not race on
// shared startup state.
var startMu sync.Mutex

// Start validates the arguments, spawns workers, and returns a handle to
// the running job. It does not block on the job: progress is observed via
// State and completion via Wait or Close.
//
// The input batch is borrowed and must not be mutated until the job
// completes. The output container is borrowed mutably and must be empty.
// An empty input is not an error: Start returns a nil handle, whose State
// reports completion and whose Wait and Close return immediately.
func Start[K1, V1, K2, V2, K3, V3 any](
	client Client[K1, V1, K2, V2, K3, V3],
	input []Pair[K1, V1],
	output *[]Pair[K3, V3],
	less Less[K2],
	workers int,
	opts ...Option,
) (*Job, error) {
	startMu.Lock()
	defer startMu.Unlock()

	if client == nil {
		return nil, mrerrors.ErrNilClient
	}
	if output == nil {
		return nil, mrerrors.ErrNilOutput
	}
	if less == nil {
		return nil, mrerrors.ErrNilLess
	}
	if workers < 1 {
		return nil, mrerrors.ErrNoWorkers
	}
	if len(input) > MaxInputs {
		return nil, mrerrors.ErrTooManyInputs
	}
	if len(input) == 0 {
		return nil, nil
	}

	cfg := defaultJobConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := newJobContext(client, input, output, less, workers, cfg)
	j := &Job{
		id:     cfg.jobID,
		ctx:    ctx,
		done:   make([]chan struct{}, workers),
		joined: make([]bool, workers),
	}
	for i := range workers {
		ch := make(chan struct{})
		j.done[i] = ch
		go func() {
			defer close(ch)
			ctx.run(i)
		}()
	}
	return j, nil
}

// ID returns the job's identifier.
func (j *Job) ID() uuid.UUID {
	if j == nil {
		return uuid.Nil
	}
	return j.id
}

// State reports the current stage and completion percentage. Non-blocking
// and safe to call from any goroutine at any time, including after Close.
//
// A zero total reports 100%: "every pair has been processed" is vacuously
// true, which also covers the nil handle returned for an empty input.
func (j *Job) State() JobState {
	if j == nil {
		return JobState{Stage: ReduceStage, Percentage: 100}
	}

	j.mu.Lock()
	ctx := j.ctx
	j.mu.Unlock()
	if ctx == nil {
		// Closed: the job ran to completion before the context was released.
		return JobState{Stage: ReduceStage, Percentage: 100}
	}

	stage, processed, total := ctx.snapshot()
	if total == 0 {
		return JobState{Stage: stage, Percentage: 100}
	}
	pct := float32(processed) / float32(total) * 100
	return JobState{Stage: stage, Percentage: min(pct, 100)}
}

// Wait blocks until every worker has finished. Each worker is joined
// exactly once no matter how many goroutines call Wait concurrently: the
// join mutex guards the per-worker joined flag, so one caller performs the
// join and the rest skip it (after blocking until it lands).
func (j *Job) Wait() {
	if j == nil {
		return
	}
	for i := range j.done {
		j.joinMu.Lock()
		if !j.joined[i] {
			<-j.done[i]
			j.joined[i] = true
		}
		j.joinMu.Unlock()
	}
}

// Close waits for the job to finish and releases its context. Idempotent
// and safe for concurrent callers. After Close the handle remains safe to
// poll (it reports completion) but the job's buffers are gone.
func (j *Job) Close() {
	if j == nil {
		return
	}
	j.Wait()
	j.mu.Lock()
	j.ctx = nil
	j.mu.Unlock()
}

// Package mapreduce implements an in-process MapReduce execution engine
// running on a fixed pool of worker goroutines.
//
// A job takes a batch of input pairs and a Client supplying the map and
// reduce transformations, runs the three-phase pipeline (parallel map,
// per-worker sort, single-coordinator shuffle, parallel reduce), and
// appends the final pairs to a caller-provided output slice. Progress can
// be polled concurrently while the job runs.
//
// # Basic Usage
//
// Starting and waiting for a job:
//
//	var out []mapreduce.Pair[string, int]
//	job, err := mapreduce.Start(client, input, &out, less, 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	job.Close()
//	// out now holds the reduced pairs
//
// Polling progress while the job runs:
//
//	for {
//	    s := job.State()
//	    fmt.Printf("%s %5.1f%%\n", s.Stage, s.Percentage)
//	    if s.Stage == mapreduce.ReduceStage && s.Percentage >= 100 {
//	        break
//	    }
//	    time.Sleep(50 * time.Millisecond)
//	}
//	job.Close()
//
// The order in which map and reduce invocations see their indices is
// unspecified, as is the order of output appends; callers that need a
// deterministic output order must sort the output themselves.
//
// # Package Structure
//
//   - Public API: job.go (Start, State, Wait, Close), client.go (Client, Pair, Less)
//   - Configuration: options.go (Option, With* functions)
//   - Pipeline: worker.go (map/sort/shuffle/reduce phases), context.go (shared job state, emit sinks)
//   - Primitives: internal/barrier (reusable rendezvous), internal/jobstate (packed progress word)
//   - Tools: cmd/wordcount (sample client), cmd/bench (throughput benchmark)
package mapreduce

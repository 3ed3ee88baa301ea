package mapreduce

// Pair couples a key with a value. The engine handles three pair layers:
// input pairs [K1, V1] supplied by the caller, intermediate pairs [K2, V2]
// produced by Map, and output pairs [K3, V3] produced by Reduce.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// Less reports whether a orders before b. It must implement a strict weak
// order: irreflexive, transitive, asymmetric. Keys for which neither
// Less(a, b) nor Less(b, a) holds are treated as equivalent and end up in
// the same shuffled group.
type Less[K any] func(a, b K) bool

// Client supplies the two user transformations of a job.
//
// Map receives one input pair and calls emit any number of times to produce
// intermediate pairs. Reduce receives one shuffled group, whose keys are all
// equivalent under the job's Less, and calls emit any number of times
// (usually once) to produce output pairs.
//
// Both transformations may run concurrently on multiple workers and must not
// retain the emit function or the group slice past the call.
type Client[K1, V1, K2, V2, K3, V3 any] interface {
	Map(key K1, value V1, emit func(key K2, value V2))
	Reduce(group []Pair[K2, V2], emit func(key K3, value V3))
}

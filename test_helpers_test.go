package mapreduce

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// charCountClient is the canonical test client: Map emits (char, 1) for
// every character of the input string, Reduce sums the counts of one
// character.
type charCountClient struct{}

func (charCountClient) Map(_ int, value string, emit func(rune, int)) {
	for _, r := range value {
		emit(r, 1)
	}
}

func (charCountClient) Reduce(group []Pair[rune, int], emit func(rune, int)) {
	sum := 0
	for _, p := range group {
		sum += p.Value
	}
	emit(group[0].Key, sum)
}

// recordingClient wraps charCountClient and additionally records a copy of
// every group handed to Reduce. With a single worker the recorded order is
// the group construction order; with more workers it is unspecified.
type recordingClient struct {
	charCountClient

	mu     sync.Mutex
	groups [][]Pair[rune, int]
}

func (c *recordingClient) Reduce(group []Pair[rune, int], emit func(rune, int)) {
	c.mu.Lock()
	c.groups = append(c.groups, slices.Clone(group))
	c.mu.Unlock()
	c.charCountClient.Reduce(group, emit)
}

func runeLess(a, b rune) bool { return a < b }

// stringsInput builds an input batch with one pair per string, keyed by
// batch index.
func stringsInput(strs []string) []Pair[int, string] {
	input := make([]Pair[int, string], len(strs))
	for i, s := range strs {
		input[i] = Pair[int, string]{Key: i, Value: s}
	}
	return input
}

// expectedCharCounts computes the per-character totals across all strings.
func expectedCharCounts(strs []string) map[rune]int {
	want := make(map[rune]int)
	for _, s := range strs {
		for _, r := range s {
			want[r]++
		}
	}
	return want
}

// outputCounts converts an output batch to a map, failing on duplicate keys
// (every key must be reduced exactly once).
func outputCounts(t *testing.T, out []Pair[rune, int]) map[rune]int {
	t.Helper()
	got := make(map[rune]int, len(out))
	for _, p := range out {
		if _, dup := got[p.Key]; dup {
			t.Fatalf("key %q appears twice in the output", p.Key)
		}
		got[p.Key] = p.Value
	}
	return got
}

// checkCharCounts verifies that the output matches the per-character totals
// of the given strings.
func checkCharCounts(t *testing.T, strs []string, out []Pair[rune, int]) {
	t.Helper()
	want := expectedCharCounts(strs)
	got := outputCounts(t, out)
	if len(got) != len(want) {
		t.Fatalf("output has %d distinct keys, want %d", len(got), len(want))
	}
	for r, n := range want {
		if got[r] != n {
			t.Errorf("count for %q = %d, want %d", r, got[r], n)
		}
	}
}

// runCharCount starts a character-counting job over strs and closes it.
func runCharCount(t *testing.T, strs []string, workers int, opts ...Option) []Pair[rune, int] {
	t.Helper()
	var out []Pair[rune, int]
	job, err := Start[int, string, rune, int, rune, int](charCountClient{}, stringsInput(strs), &out, runeLess, workers, opts...)
	if err != nil {
		t.Fatal(err)
	}
	job.Close()
	return out
}

// randomWords generates n words of length in [1, maxLen] over a small
// alphabet, so runs produce plenty of key collisions.
func randomWords(rng *randv2.Rand, n, maxLen int) []string {
	const alphabet = "abcdefgh"
	words := make([]string, n)
	for i := range words {
		length := 1 + rng.IntN(maxLen)
		buf := make([]byte, length)
		for j := range buf {
			buf[j] = alphabet[rng.IntN(len(alphabet))]
		}
		words[i] = string(buf)
	}
	return words
}

// Bench is a benchmarking tool for measuring job throughput across worker
// counts on a synthetic workload with controllable key cardinality.
//
// Usage:
//
//	go run ./cmd/bench -pairs 1000000 -distinct 5000 -workers 1,2,4,8
//
// Flags:
//
//	-pairs     Number of input pairs (default: 1,000,000)
//	-distinct  Approximate number of distinct intermediate keys (default: 5,000)
//	-workers   Comma-separated worker counts to benchmark (default: 1,2,4,8)
//	-gen       Key generator: murmur3 or xxh3 (default: murmur3)
//
// Every run's output is digested; all runs must produce the same multiset
// or the tool exits nonzero.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/bits"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	"github.com/tamirms/mapreduce"
)

// sumClient is the benchmark workload: map fans each input out to its
// pre-assigned key, reduce sums the values of one key.
type sumClient struct{}

func (sumClient) Map(key uint64, value uint64, emit func(uint64, uint64)) {
	emit(key, value)
}

func (sumClient) Reduce(group []mapreduce.Pair[uint64, uint64], emit func(uint64, uint64)) {
	var sum uint64
	for _, p := range group {
		sum += p.Value
	}
	emit(group[0].Key, sum)
}

func uint64Less(a, b uint64) bool { return a < b }

// fastRange maps a 64-bit hash uniformly to [0, n) without modulo bias:
// multiply and take the high word.
func fastRange(hash, n uint64) uint64 {
	hi, _ := bits.Mul64(hash, n)
	return hi
}

// generateInput derives each pair's intermediate key by hashing its index
// and folding into the distinct-key range. The generator choice only
// changes the key distribution, never the totals.
func generateInput(gen string, pairs, distinct int) ([]mapreduce.Pair[uint64, uint64], error) {
	if gen != "murmur3" && gen != "xxh3" {
		return nil, fmt.Errorf("unknown generator %q (want murmur3 or xxh3)", gen)
	}
	var buf [8]byte
	hash := func(i int) uint64 {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		if gen == "murmur3" {
			return murmur3.Sum64(buf[:])
		}
		return xxh3.Hash(buf[:])
	}

	input := make([]mapreduce.Pair[uint64, uint64], pairs)
	for i := range input {
		input[i] = mapreduce.Pair[uint64, uint64]{
			Key:   fastRange(hash(i), uint64(distinct)),
			Value: uint64(i),
		}
	}
	return input, nil
}

// outputDigest hashes the sorted output multiset.
func outputDigest(out []mapreduce.Pair[uint64, uint64]) uint64 {
	sorted := slices.Clone(out)
	slices.SortFunc(sorted, func(a, b mapreduce.Pair[uint64, uint64]) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})
	h := xxhash.New()
	var buf [16]byte
	for _, p := range sorted {
		binary.LittleEndian.PutUint64(buf[:8], p.Key)
		binary.LittleEndian.PutUint64(buf[8:], p.Value)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Convert KB to bytes on Linux
	}
	return maxRSS
}

func parseWorkerCounts(s string) ([]int, error) {
	var counts []int
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad worker count %q", field)
		}
		counts = append(counts, n)
	}
	return counts, nil
}

func main() {
	pairsFlag := flag.Int("pairs", 1_000_000, "number of input pairs")
	distinctFlag := flag.Int("distinct", 5_000, "approximate number of distinct keys")
	workersFlag := flag.String("workers", "1,2,4,8", "comma-separated worker counts")
	genFlag := flag.String("gen", "murmur3", "key generator: murmur3 or xxh3")
	flag.Parse()

	counts, err := parseWorkerCounts(*workersFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Generating %d pairs (~%d distinct keys, %s)...\n", *pairsFlag, *distinctFlag, *genFlag)
	input, err := generateInput(*genFlag, *pairsFlag, *distinctFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var baseline uint64
	for i, workers := range counts {
		var out []mapreduce.Pair[uint64, uint64]
		start := time.Now()
		job, err := mapreduce.Start[uint64, uint64, uint64, uint64, uint64, uint64](
			sumClient{}, input, &out, uint64Less, workers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "start job (workers=%d): %v\n", workers, err)
			os.Exit(1)
		}
		job.Close()
		elapsed := time.Since(start)

		digest := outputDigest(out)
		if i == 0 {
			baseline = digest
		} else if digest != baseline {
			fmt.Fprintf(os.Stderr, "digest mismatch at workers=%d: %016x != %016x\n", workers, digest, baseline)
			os.Exit(1)
		}

		rate := float64(*pairsFlag) / elapsed.Seconds() / 1e6
		fmt.Printf("workers=%-3d %10v  %6.2f Mpairs/s  %d groups  digest %016x\n",
			workers, elapsed.Round(time.Millisecond), rate, len(out), digest)
	}

	fmt.Printf("Peak RSS: %.1f MiB\n", float64(getMaxRSS())/(1<<20))
}

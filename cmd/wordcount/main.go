// Wordcount runs the engine's sample client over text files: map emits one
// (token, 1) pair per occurrence, reduce sums them. Input files are
// memory-mapped and loaded concurrently; progress is polled while the job
// runs.
//
// Usage:
//
//	go run ./cmd/wordcount [flags] file1.txt [file2.txt ...]
//
// Flags:
//
//	-workers  Number of worker goroutines (default: 4)
//	-mode     Token kind: "word" or "char" (default: word)
//	-top      Number of highest-count tokens to print (default: 20)
//	-poll     Progress poll interval (default: 50ms)
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tamirms/mapreduce"
	"github.com/tamirms/mapreduce/internal/textinput"
)

// tokenClient counts tokens per line. The token kind (words or characters)
// is fixed at job start.
type tokenClient struct {
	chars bool
}

func (c tokenClient) Map(_ string, line string, emit func(string, int)) {
	if c.chars {
		for _, r := range line {
			emit(string(r), 1)
		}
		return
	}
	for _, w := range strings.Fields(line) {
		emit(w, 1)
	}
}

func (c tokenClient) Reduce(group []mapreduce.Pair[string, int], emit func(string, int)) {
	sum := 0
	for _, p := range group {
		sum += p.Value
	}
	emit(group[0].Key, sum)
}

// loadInputs maps all files concurrently and flattens them into one input
// batch of (path, line) pairs.
func loadInputs(paths []string) ([]mapreduce.Pair[string, string], error) {
	perFile := make([][]string, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			f, err := textinput.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			perFile[i] = f.Lines()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var input []mapreduce.Pair[string, string]
	for i, lines := range perFile {
		for _, line := range lines {
			input = append(input, mapreduce.Pair[string, string]{Key: paths[i], Value: line})
		}
	}
	return input, nil
}

// outputDigest hashes the sorted output so runs over the same input can be
// compared across worker counts.
func outputDigest(out []mapreduce.Pair[string, int]) uint64 {
	sorted := slices.Clone(out)
	slices.SortFunc(sorted, func(a, b mapreduce.Pair[string, int]) int {
		return strings.Compare(a.Key, b.Key)
	})
	h := xxhash.New()
	for _, p := range sorted {
		fmt.Fprintf(h, "%s\x00%d\n", p.Key, p.Value)
	}
	return h.Sum64()
}

func main() {
	workersFlag := flag.Int("workers", 4, "number of worker goroutines")
	modeFlag := flag.String("mode", "word", "token kind: word or char")
	topFlag := flag.Int("top", 20, "number of highest-count tokens to print")
	pollFlag := flag.Duration("poll", 50*time.Millisecond, "progress poll interval")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: wordcount [flags] file1.txt [file2.txt ...]")
		os.Exit(2)
	}
	if *modeFlag != "word" && *modeFlag != "char" {
		fmt.Fprintf(os.Stderr, "unknown mode %q (want word or char)\n", *modeFlag)
		os.Exit(2)
	}

	input, err := loadInputs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load inputs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d lines from %d files\n", len(input), flag.NArg())

	var out []mapreduce.Pair[string, int]
	start := time.Now()
	job, err := mapreduce.Start[string, string, string, int, string, int](
		tokenClient{chars: *modeFlag == "char"}, input, &out,
		func(a, b string) bool { return a < b }, *workersFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start job: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Job %s started with %d workers\n", job.ID(), *workersFlag)

	// Poll until the reduce stage completes, printing each change.
	var last mapreduce.JobState
	for {
		s := job.State()
		if s != last {
			fmt.Printf("  %-9s %5.1f%%\n", s.Stage, s.Percentage)
			last = s
		}
		if s.Stage == mapreduce.ReduceStage && s.Percentage >= 100 {
			break
		}
		time.Sleep(*pollFlag)
	}
	job.Close()
	elapsed := time.Since(start)

	slices.SortFunc(out, func(a, b mapreduce.Pair[string, int]) int {
		if a.Value != b.Value {
			return b.Value - a.Value
		}
		return strings.Compare(a.Key, b.Key)
	})
	top := min(*topFlag, len(out))
	fmt.Printf("\n%d distinct tokens in %v (digest %016x)\n", len(out), elapsed, outputDigest(out))
	for _, p := range out[:top] {
		fmt.Printf("  %8d  %q\n", p.Value, p.Key)
	}
}

package textinput

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeTestFile(t *testing.T, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenBytes(t *testing.T) {
	contents := []byte("hello mapped world")
	path := writeTestFile(t, "plain.txt", contents)

	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if !bytes.Equal(f.Bytes(), contents) {
		t.Fatalf("Bytes() = %q, want %q", f.Bytes(), contents)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Idempotent close
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestLines(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     []string
	}{
		{"trailing_newline", "one\ntwo\nthree\n", []string{"one", "two", "three"}},
		{"no_trailing_newline", "one\ntwo", []string{"one", "two"}},
		{"crlf", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"single_line", "only", []string{"only"}},
		{"blank_interior_line", "a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTestFile(t, "lines.txt", []byte(tc.contents))
			f, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			if got := f.Lines(); !slices.Equal(got, tc.want) {
				t.Fatalf("Lines() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := writeTestFile(t, "empty.txt", nil)
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if len(f.Bytes()) != 0 {
		t.Fatalf("Bytes() = %q, want empty", f.Bytes())
	}
	if got := f.Lines(); got != nil {
		t.Fatalf("Lines() = %q, want nil", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("Open succeeded on a missing file")
	}
}

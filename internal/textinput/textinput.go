// Package textinput loads text files as memory-mapped byte slices for use
// as job input batches.
package textinput

import (
	"fmt"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// File is a read-only memory-mapped text file.
type File struct {
	Path string

	// Memory map (no file handle needed after mmap)
	data mmap.MMap
}

// Open memory-maps the file at path read-only. The kernel is hinted that
// the mapping will be scanned sequentially.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat input file: %w", err)
	}
	if st.Size() == 0 {
		// mmap of an empty file fails on some platforms; an empty input
		// needs no mapping at all.
		return &File{Path: path}, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap input file: %w", err)
	}
	fadviseSequential(int(f.Fd()), 0, st.Size())

	return &File{Path: path, data: mm}, nil
}

// Bytes returns the mapped contents. Valid until Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Lines splits the mapped contents into lines, dropping trailing carriage
// returns and a final empty line. The returned strings are copies and
// remain valid after Close.
func (f *File) Lines() []string {
	if len(f.data) == 0 {
		return nil
	}
	lines := strings.Split(string(f.data), "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Close unmaps the file.
func (f *File) Close() error {
	if f.data == nil {
		return nil
	}
	err := f.data.Unmap()
	f.data = nil
	return err
}

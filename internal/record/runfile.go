package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

// RunName returns the path for run file index idx under prefix, using the
// "<prefix>_NNNN.bin" naming from the spec (4-digit zero-padded index).
func RunName(prefix string, idx int) string {
	return fmt.Sprintf("%s_%04d.bin", prefix, idx)
}

// RunWriter buffers Records and writes them sequentially to one run file.
type RunWriter struct {
	file fs.File
	buf  *bufio.Writer
}

// CreateRunWriter creates (truncating if necessary) the run file at path.
func CreateRunWriter(filesystem fs.FS, path string) (*RunWriter, error) {
	file, err := filesystem.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run file %q: %w", path, err)
	}

	return &RunWriter{file: file, buf: bufio.NewWriter(file)}, nil
}

// Write appends one record.
func (w *RunWriter) Write(r Record) error {
	return Write(w.buf, r)
}

// Close flushes buffered data and closes the underlying file.
func (w *RunWriter) Close() error {
	flushErr := w.buf.Flush()

	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush run file: %w", flushErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close run file: %w", closeErr)
	}

	return nil
}

// RunReader reads Records sequentially from one run file.
type RunReader struct {
	file fs.File
	buf  *bufio.Reader
}

// OpenRunReader opens the run file at path for sequential reading.
func OpenRunReader(filesystem fs.FS, path string) (*RunReader, error) {
	file, err := filesystem.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run file %q: %w", path, err)
	}

	return &RunReader{file: file, buf: bufio.NewReaderSize(file, 64*1024)}, nil
}

// Next returns the next record, or io.EOF when the run file is exhausted.
func (r *RunReader) Next() (Record, error) {
	rec, err := Read(r.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}

		return Record{}, err
	}

	return rec, nil
}

// Close closes the underlying file.
func (r *RunReader) Close() error {
	err := r.file.Close()
	if err != nil {
		return fmt.Errorf("close run file: %w", err)
	}

	return nil
}

// File exposes the underlying fs.File, used by the unix build to set
// advisory locks/readahead hints (see internal/cooccur/runfile_unix.go).
func (w *RunWriter) File() fs.File { return w.file }

// File exposes the underlying fs.File for advisory hints.
func (r *RunReader) File() fs.File { return r.file }

// Package iox wraps atomic, whole-file output for the pipeline's three
// CLI stages so a named --output file is never left half-written on
// failure or interruption, mirroring the teacher's own use of
// github.com/natefinch/atomic for ticket and cache file writes.
package iox

import (
	"fmt"
	"io"

	"github.com/natefinch/atomic"
)

// WriteFileAtomic writes the entirety of r to path via a temp-file-then-
// rename, so concurrent readers never observe a partial file.
func WriteFileAtomic(path string, r io.Reader) error {
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("atomic write %q: %w", path, err)
	}

	return nil
}

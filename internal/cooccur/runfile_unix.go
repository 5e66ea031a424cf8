//go:build unix

package cooccur

import (
	"golang.org/x/sys/unix"

	"github.com/corpuspipe/cooccur-pipeline/internal/record"
)

// lockRunFile takes a non-blocking advisory exclusive lock on w's
// underlying file for the duration of a run write. A failed lock is not
// fatal — it only means another process could interleave writes to the
// same path, which the caller already controls by construction.
func lockRunFile(w *record.RunWriter) error {
	return unix.Flock(int(w.File().Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// adviseSequentialRead hints the kernel that r's underlying file will be
// read start-to-end once, matching the merge phase's access pattern.
func adviseSequentialRead(r *record.RunReader) error {
	return unix.Fadvise(int(r.File().Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}

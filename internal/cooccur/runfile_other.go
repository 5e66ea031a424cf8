//go:build !unix

package cooccur

import "github.com/corpuspipe/cooccur-pipeline/internal/record"

// lockRunFile is a no-op on non-unix platforms; advisory locking has no
// portable equivalent worth emulating here.
func lockRunFile(w *record.RunWriter) error {
	return nil
}

// adviseSequentialRead is a no-op on non-unix platforms.
func adviseSequentialRead(r *record.RunReader) error {
	return nil
}

// Package shuffle implements the two-phase, memory-bounded shuffle that
// turns a large sorted stream of co-occurrence records into a uniformly
// permuted one: a chunked Fisher-Yates pass writes shuffled runs to temp
// files, then an interleaved round-robin pass reads across every run,
// reshuffles each assembled array, and emits the final stream.
package shuffle

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

// arrayMemoryFraction is the share of the soft memory limit set aside for
// the in-memory shuffle array, leaving headroom for buffered I/O.
const arrayMemoryFraction = 0.95

// ArraySize computes the number of records that fit in the in-memory
// shuffle array for a soft memory limit of memoryLimitGB gigabytes:
// ⌊0.95 · B · 2^30 / recordSize⌋.
func ArraySize(memoryLimitGB float64, recordSize int) int {
	return int(arrayMemoryFraction * memoryLimitGB * (1 << 30) / float64(recordSize))
}

// Shuffler drives the two-phase shuffle over one stream of records.
type Shuffler struct {
	runFS     fs.FS
	prefix    string
	arraySize int
	rng       *rand.Rand
}

// New returns a Shuffler sized for arraySize records at a time, writing its
// temp run files under prefix and drawing shuffle permutations from rng.
func New(runFS fs.FS, prefix string, arraySize int, rng *rand.Rand) *Shuffler {
	if arraySize < 1 {
		arraySize = 1
	}

	return &Shuffler{runFS: runFS, prefix: prefix, arraySize: arraySize, rng: rng}
}

// Run reads every record from r, shuffles them, and writes the permutation
// to w. Temp run files created along the way are removed when Run
// succeeds; on failure they are left on disk.
func (s *Shuffler) Run(r io.Reader, w io.Writer) error {
	paths, err := s.phase1(r)
	if err != nil {
		return err
	}

	if err := s.phase2(paths, w); err != nil {
		return err
	}

	s.cleanup(paths)

	return nil
}

// phase1 reads r in arraySize chunks, shuffles each chunk in place, and
// writes it to its own temp run file, returning the run file paths in
// write order.
func (s *Shuffler) phase1(r io.Reader) ([]string, error) {
	var paths []string

	buf := make([]record.Record, 0, s.arraySize)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}

		fisherYates(buf, s.rng)

		path := record.RunName(s.prefix, len(paths))

		rw, err := record.CreateRunWriter(s.runFS, path)
		if err != nil {
			return fmt.Errorf("create shuffle run %s: %w", path, err)
		}

		for _, rec := range buf {
			if err := rw.Write(rec); err != nil {
				_ = rw.Close()

				return fmt.Errorf("write shuffle run %s: %w", path, err)
			}
		}

		if err := rw.Close(); err != nil {
			return fmt.Errorf("close shuffle run %s: %w", path, err)
		}

		paths = append(paths, path)
		buf = buf[:0]

		return nil
	}

	for {
		rec, err := record.Read(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("read input record: %w", err)
		}

		buf = append(buf, rec)

		if len(buf) == s.arraySize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return paths, nil
}

// phase2 opens every phase-1 run file and repeatedly fills an array by
// round-robin reads across all of them, reshuffling and emitting each
// filled array, until every run is exhausted.
func (s *Shuffler) phase2(paths []string, w io.Writer) error {
	readers := make([]*record.RunReader, 0, len(paths))

	defer func() {
		for _, rr := range readers {
			_ = rr.Close()
		}
	}()

	for _, p := range paths {
		rr, err := record.OpenRunReader(s.runFS, p)
		if err != nil {
			return fmt.Errorf("open shuffle run %s: %w", p, err)
		}

		readers = append(readers, rr)
	}

	active := make([]int, len(readers))
	for i := range active {
		active[i] = i
	}

	cursor := 0
	buf := make([]record.Record, 0, s.arraySize)

	for len(active) > 0 {
		buf = buf[:0]

		for len(buf) < s.arraySize && len(active) > 0 {
			if cursor >= len(active) {
				cursor = 0
			}

			idx := active[cursor]

			rec, err := readers[idx].Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					active = append(active[:cursor], active[cursor+1:]...)

					continue
				}

				return fmt.Errorf("read shuffle run %s: %w", paths[idx], err)
			}

			buf = append(buf, rec)
			cursor++
		}

		if len(buf) == 0 {
			break
		}

		fisherYates(buf, s.rng)

		for _, rec := range buf {
			if err := record.Write(w, rec); err != nil {
				return fmt.Errorf("write shuffled output: %w", err)
			}
		}
	}

	return nil
}

// fisherYates shuffles arr in place over its full populated length,
// drawing each swap index uniformly via rng.
func fisherYates(arr []record.Record, rng *rand.Rand) {
	for i := len(arr) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		arr[i], arr[j] = arr[j], arr[i]
	}
}

func (s *Shuffler) cleanup(paths []string) {
	for _, p := range paths {
		_ = s.runFS.Remove(p)
	}
}

package cooccur

import (
	"fmt"
	"io"

	"github.com/corpuspipe/cooccur-pipeline/internal/corpus"
	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/internal/vocab"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

// Accumulator drives the streaming pass over a tokenized corpus, routing
// each windowed pair into the dense table or the overflow buffer and
// spilling the overflow buffer to numbered run files as it fills.
//
// Run 0000 is reserved for the final dense-table flush; overflow runs are
// numbered starting at 1, in the order they are written.
type Accumulator struct {
	vocab     *vocab.Table
	dense     *Dense
	overflow  *Overflow
	window    int
	symmetric bool

	overflowLength int64

	history []int32

	runFS    fs.FS
	prefix   string
	nextRun  int
	runPaths []string
}

// NewAccumulator builds an Accumulator sized by plan, reading ranks from
// vocabTable. overflowPrefix names the overflow/dense run files written as
// <overflowPrefix>_NNNN.bin.
func NewAccumulator(runFS fs.FS, vocabTable *vocab.Table, plan Plan, window int, symmetric bool, overflowPrefix string) *Accumulator {
	return &Accumulator{
		vocab:          vocabTable,
		dense:          NewDense(vocabTable.Len(), plan.MaxProduct),
		overflow:       NewOverflow(plan.OverflowLength),
		window:         window,
		symmetric:      symmetric,
		overflowLength: plan.OverflowLength,
		history:        make([]int32, 0, window),
		runFS:          runFS,
		prefix:         overflowPrefix,
		nextRun:        1,
	}
}

// Run consumes tokens from r until EOF, accumulating windowed co-occurrence
// weights. A line break resets the history window; an out-of-vocabulary
// token is skipped and neither contributes weight nor enters history.
func (a *Accumulator) Run(r io.Reader) error {
	s := corpus.NewScanner(r)

	for {
		kind, tok, err := s.Next()
		if err != nil {
			return fmt.Errorf("scan corpus: %w", err)
		}

		switch kind {
		case corpus.KindWord:
			if err := a.process(tok); err != nil {
				return err
			}
		case corpus.KindLineBreak:
			a.history = a.history[:0]
		case corpus.KindEOF:
			return nil
		}
	}
}

// process folds one token into the window, weighting each prior token in
// history by the inverse of its distance, then pushes the token's own rank
// onto history.
func (a *Accumulator) process(tok []byte) error {
	rank, ok := a.vocab.Rank(tok)
	if !ok {
		return nil
	}

	w2 := int32(rank)

	if int64(a.overflow.Len()) >= a.overflowLength-int64(a.window) {
		if err := a.flushOverflow(); err != nil {
			return err
		}
	}

	for i := len(a.history) - 1; i >= 0; i-- {
		dist := len(a.history) - i
		if dist > a.window {
			break
		}

		w1 := a.history[i]
		weight := 1.0 / float64(dist)

		a.addPair(w1, w2, weight)
	}

	a.history = append(a.history, w2)
	if len(a.history) > a.window {
		a.history = a.history[1:]
	}

	return nil
}

// addPair routes one windowed pair. The dense/overflow test is evaluated
// once, on the pair as generated by the window walk; when symmetric, the
// mirrored pair is routed to the same destination without a second test —
// w1 < ⌊M/w2⌋ already guarantees w2 ≤ ⌊M/w1⌋, so the mirrored cell is
// always within the same region as the primary one.
func (a *Accumulator) addPair(w1, w2 int32, weight float64) {
	if a.dense.InDense(w1, w2) {
		a.dense.Add(w1, w2, weight)

		if a.symmetric {
			a.dense.Add(w2, w1, weight)
		}

		return
	}

	a.overflow.Append(record.Record{W1: w1, W2: w2, V: weight})

	if a.symmetric {
		a.overflow.Append(record.Record{W1: w2, W2: w1, V: weight})
	}
}

// flushOverflow sorts, dedups and writes the current overflow buffer to its
// own run file, then resets the buffer. A no-op when the buffer is empty.
func (a *Accumulator) flushOverflow() error {
	if a.overflow.Len() == 0 {
		return nil
	}

	path := record.RunName(a.prefix, a.nextRun)

	w, err := record.CreateRunWriter(a.runFS, path)
	if err != nil {
		return fmt.Errorf("create overflow run %s: %w", path, err)
	}

	_ = lockRunFile(w)

	if err := a.overflow.Flush(w); err != nil {
		_ = w.Close()

		return fmt.Errorf("flush overflow run %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close overflow run %s: %w", path, err)
	}

	a.runPaths = append(a.runPaths, path)
	a.nextRun++

	return nil
}

// Finish flushes any remaining overflow records, writes the dense table's
// nonzero cells to run 0000, and returns every run file path produced, in
// an order safe to hand to Merge (dense run first, then overflow runs in
// write order).
func (a *Accumulator) Finish() ([]string, error) {
	if err := a.flushOverflow(); err != nil {
		return nil, err
	}

	densePath := record.RunName(a.prefix, 0)

	w, err := record.CreateRunWriter(a.runFS, densePath)
	if err != nil {
		return nil, fmt.Errorf("create dense run %s: %w", densePath, err)
	}

	_ = lockRunFile(w)

	if err := a.dense.WriteNonZero(w); err != nil {
		_ = w.Close()

		return nil, fmt.Errorf("flush dense run %s: %w", densePath, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close dense run %s: %w", densePath, err)
	}

	return append([]string{densePath}, a.runPaths...), nil
}

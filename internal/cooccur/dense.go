package cooccur

import (
	"github.com/corpuspipe/cooccur-pipeline/internal/record"
)

// Dense is the packed, flat in-memory table for pairs whose rank product is
// below the frequency-product cutoff (spec.md §3, "Dense region D").
//
// Kept as a single flat allocation rather than a jagged slice-of-slices:
// the spec's design note calls memory locality here "load-bearing for
// throughput" (spec.md §9).
type Dense struct {
	lookup     []int64 // L, length vocabSize+1
	cells      []float64
	maxProduct int64
	vocabSize  int
}

// NewDense builds the lookup table L and allocates the zero-initialized
// cell array for the given vocabulary size and frequency-product cutoff,
// per spec.md §4.2, "Lookup table construction".
func NewDense(vocabSize int, maxProduct int64) *Dense {
	lookup := make([]int64, vocabSize+1)
	lookup[0] = 1

	for a := 1; a <= vocabSize; a++ {
		q := maxProduct / int64(a)
		if q < int64(vocabSize) {
			lookup[a] = lookup[a-1] + q
		} else {
			lookup[a] = lookup[a-1] + int64(vocabSize)
		}
	}

	return &Dense{
		lookup:     lookup,
		cells:      make([]float64, lookup[vocabSize]),
		maxProduct: maxProduct,
		vocabSize:  vocabSize,
	}
}

// InDense reports whether the ordered pair (w1, w2) belongs to the dense
// region: w1 < ⌊maxProduct / w2⌋ (spec.md §4.2, streaming pass).
func (d *Dense) InDense(w1, w2 int32) bool {
	return int64(w1) < d.maxProduct/int64(w2)
}

// Add adds weight to the cell for (row, col), centralizing the offset
// arithmetic behind one primitive per spec.md §9's design note ("Expose a
// single 'add at (w1, w2)' primitive"). Callers must have already
// established the pair belongs to the dense region.
func (d *Dense) Add(row, col int32, weight float64) {
	idx := d.lookup[row-1] + int64(col) - 2
	d.cells[idx] += weight
}

// WriteNonZero iterates every reserved cell in row-major order and writes
// the nonzero ones as records, per spec.md §4.2, "Flush": x = 1..|V|,
// y = 1..(L[x]-L[x-1]).
func (d *Dense) WriteNonZero(w *record.RunWriter) error {
	for x := 1; x <= d.vocabSize; x++ {
		base := d.lookup[x-1]
		count := d.lookup[x] - d.lookup[x-1]

		for y := int64(1); y <= count; y++ {
			v := d.cells[base+y-2]
			if v == 0 {
				continue
			}

			err := w.Write(record.Record{W1: int32(x), W2: int32(y), V: v})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

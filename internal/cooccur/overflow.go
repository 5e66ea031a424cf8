package cooccur

import (
	"sort"

	"github.com/corpuspipe/cooccur-pipeline/internal/record"
)

// Overflow is the bounded sequence of records for pairs outside the dense
// region (spec.md §3, "Overflow buffer O").
type Overflow struct {
	buf []record.Record
}

// NewOverflow returns an empty Overflow with its backing array
// preallocated to capacityHint records.
func NewOverflow(capacityHint int64) *Overflow {
	if capacityHint < 0 {
		capacityHint = 0
	}

	return &Overflow{buf: make([]record.Record, 0, capacityHint)}
}

// Append adds one record to the buffer.
func (o *Overflow) Append(r record.Record) {
	o.buf = append(o.buf, r)
}

// Len returns the number of buffered records.
func (o *Overflow) Len() int {
	return len(o.buf)
}

// Flush sorts the buffer by (w1, w2), merges adjacent duplicates by summing
// v, writes the compacted result to w, and clears the buffer — spec.md
// §4.2's overflow-flush step. A no-op when the buffer is empty.
func (o *Overflow) Flush(w *record.RunWriter) error {
	if len(o.buf) == 0 {
		return nil
	}

	sort.Slice(o.buf, func(i, j int) bool {
		return o.buf[i].Less(o.buf[j])
	})

	current := o.buf[0]

	for _, r := range o.buf[1:] {
		if r.SameKey(current) {
			current.V += r.V

			continue
		}

		if err := w.Write(current); err != nil {
			return err
		}

		current = r
	}

	if err := w.Write(current); err != nil {
		return err
	}

	o.buf = o.buf[:0]

	return nil
}

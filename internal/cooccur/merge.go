package cooccur

import (
	"container/heap"
	"errors"
	"fmt"
	"io"

	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

// mergeItem is one open run file's current front record, tracked in the
// merge heap keyed by (w1, w2) with run index as the tie-break so the merge
// is stable across runs that share a key.
type mergeItem struct {
	rec    record.Record
	run    int
	reader *record.RunReader
	path   string
}

type mergeHeap []*mergeItem

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if h[i].rec.SameKey(h[j].rec) {
		return h[i].run < h[j].run
	}

	return h[i].rec.Less(h[j].rec)
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(*mergeItem)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return item
}

// MergeStats summarizes what Merge wrote: the number of distinct (w1, w2)
// keys emitted and the sum of every v across those keys.
type MergeStats struct {
	Records   int64
	WeightSum float64
}

// Merge performs the external k-way merge of paths — each already sorted
// by (w1, w2) — into a single sorted, deduplicated stream written to out.
// Equal keys across runs are combined by summing v. Every input run file is
// removed once the merge completes successfully.
func Merge(runFS fs.FS, paths []string, out *record.RunWriter) (MergeStats, error) {
	var stats MergeStats

	h := make(mergeHeap, 0, len(paths))
	readers := make([]*record.RunReader, 0, len(paths))

	defer func() {
		for _, r := range readers {
			_ = r.Close()
		}
	}()

	for i, p := range paths {
		r, err := record.OpenRunReader(runFS, p)
		if err != nil {
			return stats, fmt.Errorf("open run %s: %w", p, err)
		}

		_ = adviseSequentialRead(r)

		readers = append(readers, r)

		rec, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				continue
			}

			return stats, fmt.Errorf("read run %s: %w", p, err)
		}

		h = append(h, &mergeItem{rec: rec, run: i, reader: r, path: p})
	}

	heap.Init(&h)

	for h.Len() > 0 {
		top := heap.Pop(&h).(*mergeItem)
		current := top.rec

		for h.Len() > 0 && h[0].rec.SameKey(current) {
			dup := heap.Pop(&h).(*mergeItem)
			current.V += dup.rec.V

			if err := advance(&h, dup); err != nil {
				return stats, err
			}
		}

		if err := out.Write(current); err != nil {
			return stats, fmt.Errorf("write merged record: %w", err)
		}

		stats.Records++
		stats.WeightSum += current.V

		if err := advance(&h, top); err != nil {
			return stats, err
		}
	}

	for _, p := range paths {
		if err := runFS.Remove(p); err != nil {
			return stats, fmt.Errorf("remove run %s: %w", p, err)
		}
	}

	return stats, nil
}

// advance reads the next record from item's reader and, if one is
// available, re-pushes item onto the heap.
func advance(h *mergeHeap, item *mergeItem) error {
	rec, err := item.reader.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("read run %s: %w", item.path, err)
	}

	item.rec = rec
	heap.Push(h, item)

	return nil
}

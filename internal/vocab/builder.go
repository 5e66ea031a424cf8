package vocab

import (
	"bytes"
	"errors"
	"sort"
)

// ReservedToken is rejected anywhere it appears in the corpus: a word table
// is expected to describe real tokens, not the training-time placeholder.
const ReservedToken = "<unk>"

// ErrReservedToken is returned by Builder.Add when the corpus contains the
// reserved "<unk>" token.
var ErrReservedToken = errors.New("unk in corpus")

// Entry is one vocabulary record: a word and its corpus frequency.
type Entry struct {
	Word  []byte
	Count uint64
}

// Builder accumulates token counts with a move-to-front chained hash table
// and produces the ranked vocabulary table on Finalize.
type Builder struct {
	table *chainTable[uint64]
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{table: newChainTable[uint64](1 << 16)}
}

// Add records one occurrence of token. token longer than MaxTokenLen is
// truncated first. Returns ErrReservedToken if token (after truncation)
// equals the reserved "<unk>" token.
func (b *Builder) Add(token []byte) error {
	if len(token) > MaxTokenLen {
		token = token[:MaxTokenLen]
	}

	if bytes.Equal(token, []byte(ReservedToken)) {
		return ErrReservedToken
	}

	idx, ok := b.table.find(token)
	if ok {
		b.table.setValue(idx, b.table.value(idx)+1)

		return nil
	}

	b.table.insert(token, 1)

	return nil
}

// Len returns the number of distinct tokens seen so far.
func (b *Builder) Len() int {
	return b.table.len()
}

// Finalize produces the canonical ranked vocabulary: sorted by descending
// count with ties broken by ascending lexicographic word order, optionally
// truncated to maxVocab entries and filtered by minCount.
//
// When maxVocab > 0 and more unique words exist than maxVocab, truncation
// first sorts by count alone (no tie-break) to scatter same-count words
// before cutting the tail, then sorts again with the alphabetic tie-break —
// matching the spec's two-pass truncation (spec.md §4.1, "Finalization").
func (b *Builder) Finalize(minCount uint64, maxVocab int) []Entry {
	entries := make([]Entry, 0, b.table.len())

	b.table.each(func(word []byte, count uint64) {
		owned := make([]byte, len(word))
		copy(owned, word)
		entries = append(entries, Entry{Word: owned, Count: count})
	})

	if maxVocab > 0 && maxVocab < len(entries) {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})

		entries = entries[:maxVocab]
	}

	sortRanked(entries)

	cut := len(entries)

	for i, e := range entries {
		if e.Count < minCount {
			cut = i

			break
		}
	}

	return entries[:cut]
}

// sortRanked sorts entries by descending count, ties broken by ascending
// lexicographic word order — the canonical rank order (spec.md §3).
func sortRanked(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}

		return bytes.Compare(entries[i].Word, entries[j].Word) < 0
	})
}

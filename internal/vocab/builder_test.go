package vocab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpuspipe/cooccur-pipeline/internal/vocab"
)

func Test_Builder_Finalize_OrdersByDescendingCountThenAlphabetic(t *testing.T) {
	t.Parallel()

	b := vocab.NewBuilder()

	addN(t, b, "a", 3)
	addN(t, b, "b", 2)
	addN(t, b, "c", 1)

	got := b.Finalize(1, 0)

	want := []vocab.Entry{
		{Word: []byte("a"), Count: 3},
		{Word: []byte("b"), Count: 2},
		{Word: []byte("c"), Count: 1},
	}

	require.Equal(t, want, got)
}

func Test_Builder_Finalize_TiesBreakAlphabetically(t *testing.T) {
	t.Parallel()

	b := vocab.NewBuilder()

	addN(t, b, "zebra", 5)
	addN(t, b, "apple", 5)
	addN(t, b, "mango", 5)

	got := b.Finalize(1, 0)

	want := []vocab.Entry{
		{Word: []byte("apple"), Count: 5},
		{Word: []byte("mango"), Count: 5},
		{Word: []byte("zebra"), Count: 5},
	}

	require.Equal(t, want, got)
}

func Test_Builder_Finalize_FiltersByMinCount(t *testing.T) {
	t.Parallel()

	b := vocab.NewBuilder()

	addN(t, b, "frequent", 10)
	addN(t, b, "rare", 1)

	got := b.Finalize(2, 0)

	want := []vocab.Entry{{Word: []byte("frequent"), Count: 10}}

	require.Equal(t, want, got)
}

func Test_Builder_Finalize_TruncatesToMaxVocab(t *testing.T) {
	t.Parallel()

	b := vocab.NewBuilder()

	addN(t, b, "a", 5)
	addN(t, b, "b", 4)
	addN(t, b, "c", 3)
	addN(t, b, "d", 2)

	got := b.Finalize(1, 2)

	require.Len(t, got, 2)
	require.Equal(t, []byte("a"), got[0].Word)
	require.Equal(t, []byte("b"), got[1].Word)
}

func Test_Builder_Add_RejectsReservedToken(t *testing.T) {
	t.Parallel()

	b := vocab.NewBuilder()

	err := b.Add([]byte("<unk>"))

	require.ErrorIs(t, err, vocab.ErrReservedToken)
}

func Test_Builder_Add_TruncatesOverlongTokens(t *testing.T) {
	t.Parallel()

	b := vocab.NewBuilder()

	long := make([]byte, vocab.MaxTokenLen+500)
	for i := range long {
		long[i] = 'x'
	}

	require.NoError(t, b.Add(long))
	require.NoError(t, b.Add(long))

	entries := b.Finalize(1, 0)

	require.Len(t, entries, 1)
	require.Len(t, entries[0].Word, vocab.MaxTokenLen)
	require.EqualValues(t, 2, entries[0].Count)
}

func addN(t *testing.T, b *vocab.Builder, word string, n int) {
	t.Helper()

	for range n {
		require.NoError(t, b.Add([]byte(word)))
	}
}

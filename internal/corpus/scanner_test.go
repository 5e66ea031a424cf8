package corpus_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpuspipe/cooccur-pipeline/internal/corpus"
)

func collect(t *testing.T, input string) []string {
	t.Helper()

	s := corpus.NewScanner(strings.NewReader(input))

	var got []string

	for {
		kind, tok, err := s.Next()
		require.NoError(t, err)

		switch kind {
		case corpus.KindWord:
			got = append(got, string(tok))
		case corpus.KindLineBreak:
			got = append(got, "<NL>")
		case corpus.KindEOF:
			return got
		}
	}
}

func Test_Scanner_SplitsOnWhitespace(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b", "a", "c"}, collect(t, "a b a c"))
}

func Test_Scanner_EmitsLineBreakBetweenLines(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b", "<NL>", "b", "a"}, collect(t, "a b\nb a"))
}

func Test_Scanner_SkipsLeadingDelimiters(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b"}, collect(t, "   a   b  "))
}

func Test_Scanner_BlankLineEmitsLineBreakOnly(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "<NL>", "<NL>", "b"}, collect(t, "a\n\nb"))
}

func Test_Scanner_DiscardsCarriageReturns(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b", "<NL>", "c"}, collect(t, "a b\r\nc"))
}

func Test_Scanner_TruncatesOverlongTokens(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", corpus.MaxTokenLen+100)

	got := collect(t, long+" next")

	require.Len(t, got[0], corpus.MaxTokenLen)
	require.Equal(t, "next", got[1])
}

func Test_Scanner_TabIsADelimiter(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a", "b"}, collect(t, "a\tb"))
}

package cooccur

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/internal/vocab"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

func mustTable(t *testing.T, lines string) *vocab.Table {
	t.Helper()

	tbl, err := vocab.ReadTable(strings.NewReader(lines))
	require.NoError(t, err)

	return tbl
}

// runAccumulator runs corpus through a fresh Accumulator in dir and returns
// every record merged from the resulting run files.
func runAccumulator(t *testing.T, dir string, tbl *vocab.Table, window int, symmetric bool, maxProduct int64, corpus string) []record.Record {
	t.Helper()

	runFS := fs.NewReal()
	plan := Plan{MaxProduct: maxProduct, OverflowLength: 1024}

	acc := NewAccumulator(runFS, tbl, plan, window, symmetric, filepath.Join(dir, "run"))
	require.NoError(t, acc.Run(strings.NewReader(corpus)))

	paths, err := acc.Finish()
	require.NoError(t, err)

	outPath := filepath.Join(dir, "out.bin")
	out, err := record.CreateRunWriter(runFS, outPath)
	require.NoError(t, err)

	_, err = Merge(runFS, paths, out)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	return readAllRecords(t, runFS, outPath)
}

// Scenario A: a two-word corpus with window 1, symmetric, entirely inside
// the dense region. "a b" contributes weight 1 to (a,b) and, symmetrically,
// 1 to (b,a).
func Test_Scenario_A_SymmetricTwoWordWindow(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 1, true, 1<<20, "a b")

	require.Equal(t, []record.Record{
		{W1: 1, W2: 2, V: 1},
		{W1: 2, W2: 1, V: 1},
	}, got)
}

// Scenario B: non-symmetric mode records only the forward (history, current)
// direction.
func Test_Scenario_B_NonSymmetricOnlyForwardDirection(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 1, false, 1<<20, "a b")

	require.Equal(t, []record.Record{
		{W1: 1, W2: 2, V: 1},
	}, got)
}

// Scenario C: a window of 2 over three known words weights the nearer
// neighbor more heavily than the farther one.
func Test_Scenario_C_WindowDistanceWeighting(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\nc 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 2, false, 1<<20, "a b c")

	require.Equal(t, []record.Record{
		{W1: 1, W2: 2, V: 1},   // a-b, distance 1
		{W1: 1, W2: 3, V: 0.5}, // a-c, distance 2
		{W1: 2, W2: 3, V: 1},   // b-c, distance 1
	}, got)
}

// Scenario D: a line break resets the window, so words on either side of a
// line break never co-occur even though a larger window would otherwise
// bridge them.
func Test_Scenario_D_LineBreakResetsWindow(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 5, true, 1<<20, "a\nb")

	require.Empty(t, got)
}

// Scenario E: an out-of-vocabulary token is skipped entirely — it neither
// accumulates weight nor breaks the window for the words around it.
func Test_Scenario_E_OutOfVocabularyTokenIsSkipped(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 1, true, 1<<20, "a zzz b")

	require.Equal(t, []record.Record{
		{W1: 1, W2: 2, V: 1},
		{W1: 2, W2: 1, V: 1},
	}, got)
}

// Scenario F: a pair whose rank product exceeds the frequency-product
// cutoff is routed to the overflow buffer rather than the dense table, and
// still survives the merge into the final stream.
func Test_Scenario_F_OverflowRoutedPairSurvivesMerge(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\nc 1\nd 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 1, true, 2, "c d")

	require.Equal(t, []record.Record{
		{W1: 3, W2: 4, V: 1},
		{W1: 4, W2: 3, V: 1},
	}, got)
}

func Test_Accumulator_RepeatedPairsSumWeight(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, "a 1\nb 1\n")
	got := runAccumulator(t, t.TempDir(), tbl, 1, true, 1<<20, "a b\na b")

	require.Equal(t, []record.Record{
		{W1: 1, W2: 2, V: 2},
		{W1: 2, W2: 1, V: 2},
	}, got)
}

package cooccur

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

func writeRun(t *testing.T, runFS fs.FS, path string, records ...record.Record) {
	t.Helper()

	w, err := record.CreateRunWriter(runFS, path)
	require.NoError(t, err)

	for _, r := range records {
		require.NoError(t, w.Write(r))
	}

	require.NoError(t, w.Close())
}

func Test_Merge_CombinesAndDedupsAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runFS := fs.NewReal()

	run0 := filepath.Join(dir, "run_0000.bin")
	run1 := filepath.Join(dir, "run_0001.bin")

	writeRun(t, runFS, run0,
		record.Record{W1: 1, W2: 2, V: 1},
		record.Record{W1: 3, W2: 1, V: 4},
	)
	writeRun(t, runFS, run1,
		record.Record{W1: 1, W2: 2, V: 2},
		record.Record{W1: 2, W2: 1, V: 5},
	)

	outPath := filepath.Join(dir, "out.bin")
	out, err := record.CreateRunWriter(runFS, outPath)
	require.NoError(t, err)

	stats, err := Merge(runFS, []string{run0, run1}, out)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	require.Equal(t, int64(3), stats.Records)
	require.InDelta(t, 12.0, stats.WeightSum, 1e-12)

	got := readAllRecords(t, runFS, outPath)
	want := []record.Record{
		{W1: 1, W2: 2, V: 3},
		{W1: 2, W2: 1, V: 5},
		{W1: 3, W2: 1, V: 4},
	}
	require.Empty(t, cmp.Diff(want, got), "merged records mismatch (-want +got)")

	for _, p := range []string{run0, run1} {
		exists, err := runFS.Exists(p)
		require.NoError(t, err)
		require.False(t, exists, "run file %s should have been removed", p)
	}
}

func Test_Merge_EmptyRunListProducesNoRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runFS := fs.NewReal()

	outPath := filepath.Join(dir, "out.bin")
	out, err := record.CreateRunWriter(runFS, outPath)
	require.NoError(t, err)

	stats, err := Merge(runFS, nil, out)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	require.Zero(t, stats.Records)

	got := readAllRecords(t, runFS, outPath)
	require.Empty(t, got)
}

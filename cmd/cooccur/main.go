// Command cooccur is the Co-occurrence Accumulator: it reads a ranked
// vocabulary table and a tokenized corpus, accumulates windowed
// co-occurrence weights into a dense table plus an overflow buffer, and
// merges the resulting run files into one sorted (w1, w2, v) record stream.
//
// Usage:
//
//	cooccur --vocab-file vocab.txt [options] < corpus.txt > cooccurrences.bin
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/corpuspipe/cooccur-pipeline/internal/config"
	"github.com/corpuspipe/cooccur-pipeline/internal/cooccur"
	"github.com/corpuspipe/cooccur-pipeline/internal/iox"
	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/internal/vocab"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

const (
	defaultWindowSize     = 15
	defaultMemoryLimitGB  = 4.0
	defaultOverflowPrefix = "overflow"
)

// fileConfig is the shape of the optional JSONC --config file. Every field
// is a pointer so config.Load only overwrites what the file actually sets,
// leaving CLI flags as the final word per field (internal/config's
// precedence rule).
type fileConfig struct {
	Symmetric      *bool    `json:"symmetric"`
	WindowSize     *int     `json:"window_size"`
	MemoryLimit    *float64 `json:"memory_limit"`
	MaxProduct     *int64   `json:"max_product"`
	OverflowLength *int64   `json:"overflow_length"`
	OverflowFile   *string  `json:"overflow_file"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("cooccur", flag.ContinueOnError)
	flagSet.SetOutput(stderr)

	vocabFile := flagSet.String("vocab-file", "", "path to the ranked vocabulary table (required)")
	symmetric := flagSet.Bool("symmetric", true, "also record the mirrored (w2, w1) pair for every window pair")
	windowSize := flagSet.Int("window-size", defaultWindowSize, "number of context tokens to the left of each word (and to the right too with --symmetric)")
	memoryLimit := flagSet.Float64("memory-limit", defaultMemoryLimitGB, "soft memory budget in gigabytes, used to size the dense table")
	maxProduct := flagSet.Int64("max-product", 0, "override the computed frequency-product cutoff (0 = derive from --memory-limit)")
	overflowLength := flagSet.Int64("overflow-length", 0, "override the computed overflow buffer capacity (0 = derive from --memory-limit)")
	overflowFile := flagSet.String("overflow-file", defaultOverflowPrefix, "prefix for overflow/dense run files")
	output := flagSet.StringP("output", "o", "", "write the merged record stream to this file instead of stdout")
	configPath := flagSet.String("config", "", "optional JSONC file overriding the defaults above")
	stats := flagSet.Bool("stats", false, "print a final record-count and weight-sum summary to stderr")
	verbose := flagSet.Int("verbose", 0, "progress verbosity")

	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *vocabFile == "" {
		return fmt.Errorf("--vocab-file is required")
	}

	var fileCfg fileConfig
	if err := config.Load(*configPath, &fileCfg); err != nil {
		return err
	}

	applyFileConfig(flagSet, fileCfg, symmetric, windowSize, memoryLimit, maxProduct, overflowLength, overflowFile)

	vocabTable, err := loadVocabTable(*vocabFile)
	if err != nil {
		return err
	}

	plan := resolvePlan(*memoryLimit, *maxProduct, *overflowLength)

	runFS := fs.NewReal()

	acc := cooccur.NewAccumulator(runFS, vocabTable, plan, *windowSize, *symmetric, *overflowFile)

	if err := acc.Run(stdin); err != nil {
		return fmt.Errorf("accumulate co-occurrences: %w", err)
	}

	paths, err := acc.Finish()
	if err != nil {
		return fmt.Errorf("finalize accumulator: %w", err)
	}

	mergeStats, err := mergeTo(runFS, paths, *output, stdout)
	if err != nil {
		return err
	}

	if *verbose >= 1 {
		fmt.Fprintf(stderr, "merged %d run files\n", len(paths))
	}

	if *stats {
		fmt.Fprintf(stderr, "records: %d, weight sum: %g\n", mergeStats.Records, mergeStats.WeightSum)
	}

	return nil
}

func applyFileConfig(
	flagSet *flag.FlagSet,
	fileCfg fileConfig,
	symmetric *bool, windowSize *int, memoryLimit *float64, maxProduct, overflowLength *int64, overflowFile *string,
) {
	if fileCfg.Symmetric != nil && !flagSet.Changed("symmetric") {
		*symmetric = *fileCfg.Symmetric
	}

	if fileCfg.WindowSize != nil && !flagSet.Changed("window-size") {
		*windowSize = *fileCfg.WindowSize
	}

	if fileCfg.MemoryLimit != nil && !flagSet.Changed("memory-limit") {
		*memoryLimit = *fileCfg.MemoryLimit
	}

	if fileCfg.MaxProduct != nil && !flagSet.Changed("max-product") {
		*maxProduct = *fileCfg.MaxProduct
	}

	if fileCfg.OverflowLength != nil && !flagSet.Changed("overflow-length") {
		*overflowLength = *fileCfg.OverflowLength
	}

	if fileCfg.OverflowFile != nil && !flagSet.Changed("overflow-file") {
		*overflowFile = *fileCfg.OverflowFile
	}
}

func loadVocabTable(path string) (*vocab.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file %q: %w", path, err)
	}

	defer f.Close()

	tbl, err := vocab.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file %q: %w", path, err)
	}

	return tbl, nil
}

// resolvePlan computes the memory plan from memoryLimit, then lets an
// explicit --max-product/--overflow-length override either derived value.
func resolvePlan(memoryLimit float64, maxProductOverride, overflowLengthOverride int64) cooccur.Plan {
	plan := cooccur.PlanMemory(memoryLimit, record.Size)

	if maxProductOverride > 0 {
		plan.MaxProduct = maxProductOverride
	}

	if overflowLengthOverride > 0 {
		plan.OverflowLength = overflowLengthOverride
	}

	return plan
}

// mergeTo merges paths into a temp run file, then either atomically
// installs it at output (the same atomic-write treatment the Vocabulary
// Builder gives its --output flag) or streams it to stdout when output is
// empty.
func mergeTo(runFS fs.FS, paths []string, output string, stdout io.Writer) (cooccur.MergeStats, error) {
	tmp, err := os.CreateTemp("", "cooccur-merge-*.bin")
	if err != nil {
		return cooccur.MergeStats{}, fmt.Errorf("create temp merge file: %w", err)
	}

	tmpPath := tmp.Name()

	defer os.Remove(tmpPath)

	if err := tmp.Close(); err != nil {
		return cooccur.MergeStats{}, fmt.Errorf("close temp merge file: %w", err)
	}

	w, err := record.CreateRunWriter(runFS, tmpPath)
	if err != nil {
		return cooccur.MergeStats{}, fmt.Errorf("open temp merge file: %w", err)
	}

	stats, mergeErr := cooccur.Merge(runFS, paths, w)
	if mergeErr != nil {
		_ = w.Close()

		return stats, fmt.Errorf("merge run files: %w", mergeErr)
	}

	if err := w.Close(); err != nil {
		return stats, fmt.Errorf("close temp merge file: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return stats, fmt.Errorf("reopen temp merge file: %w", err)
	}

	defer f.Close()

	if output != "" {
		if err := iox.WriteFileAtomic(output, f); err != nil {
			return stats, err
		}

		return stats, nil
	}

	if _, err := io.Copy(stdout, f); err != nil {
		return stats, fmt.Errorf("copy merged output to stdout: %w", err)
	}

	return stats, nil
}

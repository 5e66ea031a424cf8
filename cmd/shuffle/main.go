// Command shuffle is the Shuffler: it reads a sorted (w1, w2, v) record
// stream and writes a uniformly permuted copy, using a two-phase,
// memory-bounded chunked Fisher-Yates shuffle.
//
// Usage:
//
//	shuffle [options] < cooccurrences.bin > shuffled.bin
package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/corpuspipe/cooccur-pipeline/internal/config"
	"github.com/corpuspipe/cooccur-pipeline/internal/iox"
	"github.com/corpuspipe/cooccur-pipeline/internal/record"
	"github.com/corpuspipe/cooccur-pipeline/internal/shuffle"
	"github.com/corpuspipe/cooccur-pipeline/pkg/fs"
)

const (
	defaultMemoryLimitGB = 4.0
	defaultTempFile      = "temp_shuffle"
)

type fileConfig struct {
	MemoryLimit *float64 `json:"memory_limit"`
	ArraySize   *int     `json:"array_size"`
	TempFile    *string  `json:"temp_file"`
	Seed        *uint64  `json:"seed"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("shuffle", flag.ContinueOnError)
	flagSet.SetOutput(stderr)

	memoryLimit := flagSet.Float64("memory-limit", defaultMemoryLimitGB, "soft memory budget in gigabytes, used to size the shuffle array")
	arraySizeFlag := flagSet.Int("array-size", 0, "override the computed in-memory shuffle array size (0 = derive from --memory-limit)")
	tempFile := flagSet.String("temp-file", defaultTempFile, "prefix for phase-1 temp run files")
	output := flagSet.StringP("output", "o", "", "write the shuffled stream to this file instead of stdout")
	configPath := flagSet.String("config", "", "optional JSONC file overriding the defaults above")
	seedFlag := flagSet.Uint64("seed", 0, "PRNG seed (0 = derive a seed from the current time)")
	verbose := flagSet.Int("verbose", 0, "progress verbosity")

	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	var fileCfg fileConfig
	if err := config.Load(*configPath, &fileCfg); err != nil {
		return err
	}

	applyFileConfig(flagSet, fileCfg, memoryLimit, arraySizeFlag, tempFile, seedFlag)

	arraySize := *arraySizeFlag
	if arraySize <= 0 {
		arraySize = shuffle.ArraySize(*memoryLimit, record.Size)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	if *verbose >= 1 {
		fmt.Fprintf(stderr, "seed: %d, array size: %d\n", seed, arraySize)
	}

	rng := rand.New(rand.NewPCG(seed, seed))

	runFS := fs.NewReal()
	s := shuffle.New(runFS, *tempFile, arraySize, rng)

	if *output == "" {
		return s.Run(stdin, stdout)
	}

	tmp, err := os.CreateTemp("", "shuffle-out-*.bin")
	if err != nil {
		return fmt.Errorf("create temp output file: %w", err)
	}

	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := s.Run(stdin, tmp); err != nil {
		_ = tmp.Close()

		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output file: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("reopen temp output file: %w", err)
	}

	defer f.Close()

	return iox.WriteFileAtomic(*output, f)
}

func applyFileConfig(
	flagSet *flag.FlagSet,
	fileCfg fileConfig,
	memoryLimit *float64, arraySize *int, tempFile *string, seed *uint64,
) {
	if fileCfg.MemoryLimit != nil && !flagSet.Changed("memory-limit") {
		*memoryLimit = *fileCfg.MemoryLimit
	}

	if fileCfg.ArraySize != nil && !flagSet.Changed("array-size") {
		*arraySize = *fileCfg.ArraySize
	}

	if fileCfg.TempFile != nil && !flagSet.Changed("temp-file") {
		*tempFile = *fileCfg.TempFile
	}

	if fileCfg.Seed != nil && !flagSet.Changed("seed") {
		*seed = *fileCfg.Seed
	}
}

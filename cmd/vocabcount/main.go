// Command vocabcount is the Vocabulary Builder: it reads whitespace-
// delimited tokens from stdin and writes a ranked "<word> <count>\n"
// vocabulary table, in descending count order, to stdout or a named file.
//
// Usage:
//
//	vocabcount [--min-count N] [--max-vocab N] [--output FILE] [--verbose N] < corpus.txt
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/corpuspipe/cooccur-pipeline/internal/corpus"
	"github.com/corpuspipe/cooccur-pipeline/internal/iox"
	"github.com/corpuspipe/cooccur-pipeline/internal/vocab"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("vocabcount", flag.ContinueOnError)
	flagSet.SetOutput(stderr)

	minCount := flagSet.Uint64("min-count", 1, "discard words with fewer than this many occurrences")
	maxVocab := flagSet.Int("max-vocab", 0, "cap the vocabulary to this many words (0 = unbounded)")
	output := flagSet.StringP("output", "o", "", "write the vocabulary table to this file instead of stdout")
	verbose := flagSet.Int("verbose", 0, "progress verbosity: 0 silent, 1 final counts, 2 periodic progress")

	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	builder := vocab.NewBuilder()
	scanner := corpus.NewScanner(stdin)

	var tokenCount uint64

	for {
		kind, tok, err := scanner.Next()
		if err != nil {
			return fmt.Errorf("scan corpus: %w", err)
		}

		if kind == corpus.KindEOF {
			break
		}

		if kind != corpus.KindWord {
			continue
		}

		if err := builder.Add(tok); err != nil {
			return fmt.Errorf("add token: %w", err)
		}

		tokenCount++

		if *verbose >= 2 && tokenCount%1_000_000 == 0 {
			fmt.Fprintf(stderr, "processed %d tokens, %d distinct words\n", tokenCount, builder.Len())
		}
	}

	entries := builder.Finalize(*minCount, *maxVocab)

	if *verbose >= 1 {
		fmt.Fprintf(stderr, "%d tokens processed, %d words kept\n", tokenCount, len(entries))
	}

	if *output == "" {
		buf := bufio.NewWriter(stdout)
		if err := vocab.WriteTable(buf, entries); err != nil {
			return fmt.Errorf("write vocabulary: %w", err)
		}

		return buf.Flush()
	}

	var buf bytes.Buffer
	if err := vocab.WriteTable(&buf, entries); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}

	return iox.WriteFileAtomic(*output, &buf)
}

// Package corpus implements the whitespace tokenizer shared by the
// Vocabulary Builder and the Co-occurrence Accumulator: a token is a
// maximal run of non-whitespace bytes, delimited by space, tab, or
// newline, truncated to a fixed maximum length. A newline with no
// accumulated bytes is reported as a distinct line-break signal so callers
// can reset their per-line window state (spec.md §3, "Token").
package corpus

import (
	"bufio"
	"fmt"
	"io"
)

// MaxTokenLen is the maximum token length in bytes; longer tokens are
// truncated (not split) at this length.
const MaxTokenLen = 1000

// Kind identifies what Scanner.Next returned.
type Kind int

const (
	// KindWord indicates a token was read; see the accompanying bytes.
	KindWord Kind = iota
	// KindLineBreak indicates a newline with no accumulated token bytes.
	KindLineBreak
	// KindEOF indicates the input is exhausted.
	KindEOF
)

// Scanner reads whitespace-delimited tokens from an underlying reader.
//
// The byte slice returned by Next for KindWord aliases an internal buffer
// and is only valid until the next call to Next; callers that need to keep
// it must copy.
type Scanner struct {
	r   *bufio.Reader
	buf []byte
}

// NewScanner returns a Scanner reading tokens from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 1<<20)}
}

// Next returns the next token, line-break signal, or EOF.
func (s *Scanner) Next() (Kind, []byte, error) {
	tok := s.buf[:0]

	for {
		c, err := s.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				if len(tok) > 0 {
					s.buf = tok

					return KindWord, tok, nil
				}

				return KindEOF, nil, nil
			}

			return KindEOF, nil, fmt.Errorf("read corpus: %w", err)
		}

		switch c {
		case '\r':
			continue
		case ' ', '\t':
			if len(tok) > 0 {
				s.buf = tok

				return KindWord, tok, nil
			}

			continue
		case '\n':
			if len(tok) > 0 {
				// Put the newline back so the next call observes it as its
				// own line-break signal.
				_ = s.r.UnreadByte()

				s.buf = tok

				return KindWord, tok, nil
			}

			return KindLineBreak, nil, nil
		default:
			if len(tok) < MaxTokenLen {
				tok = append(tok, c)
			}
		}
	}
}

// Package ingest reads review records from newline-delimited JSON
// datasets, optionally gzip-compressed. It is the pipeline's default
// Source implementation; unparseable lines are skipped with a warning
// rather than failing the run.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"reviewpipe/internal/review"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// scannerBufSize bounds the longest accepted input line.
const scannerBufSize = 4 * 1024 * 1024

// Reader streams review records from newline-delimited JSON.
type Reader struct {
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
	emitted int
}

// Open opens a JSONL dataset file. Paths ending in .gz are transparently
// decompressed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	var src io.Reader = f
	closers := []io.Closer{f}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open gzip dataset: %w", err)
		}
		src = gz
		closers = append([]io.Closer{gz}, closers...)
	}

	r := NewReader(src)
	r.closers = closers
	return r, nil
}

// NewReader streams reviews from an already-open reader.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), scannerBufSize)
	return &Reader{scanner: scanner}
}

// Next returns the next review record, or io.EOF when the input is
// drained. Lines that fail to parse are skipped with a warning. Records
// without an identifier get a synthetic one derived from their position,
// so every review has a stable ID for the run.
func (r *Reader) Next() (review.Review, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		var rev review.Review
		if err := json.Unmarshal([]byte(line), &rev); err != nil {
			log.Warn().Int("line", r.line).Err(err).Msg("ingest: skipping unparseable line")
			continue
		}

		if rev.ID == "" {
			rev.ID = fmt.Sprintf("review_%d", r.emitted)
		}
		r.emitted++
		return rev, nil
	}

	if err := r.scanner.Err(); err != nil {
		return review.Review{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	return review.Review{}, io.EOF
}

// Close releases the underlying file handles, if any.
func (r *Reader) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

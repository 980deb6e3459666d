// Package source reads the Russian-language requirements document and
// exposes it as an immutable, line-addressable ParsedSource — the shared
// read-only state every extractor and the evidence validator consume
// (spec §4.1, §5).
package source

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"insightify/internal/model"
	"insightify/internal/safeio"
)

// ParsedSource is the source file split into a 0-indexed line array. It is
// immutable once constructed and safe for concurrent reads (spec §5).
type ParsedSource struct {
	Path  string
	Lines []string
}

// Read loads path as UTF-8, normalizes CRLF->LF, and splits into lines.
// Trailing whitespace within a line is preserved; the line terminator itself
// is not.
func Read(path string) (*ParsedSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSourceIO, err)
	}
	fs, err := safeio.NewSafeFS(filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSourceIO, err)
	}
	raw, err := fs.SafeReadFile(filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSourceIO, err)
	}
	return Parse(path, raw), nil
}

// Parse builds a ParsedSource directly from raw bytes (used by tests and by
// Read). Exported so callers that already hold the bytes (e.g. an uploaded
// payload) don't need a real file on disk.
func Parse(path string, raw []byte) *ParsedSource {
	normalized := strings.ReplaceAll(string(raw), "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	// A trailing newline produces one spurious empty final element; strip it
	// so LineCount matches what a human counts looking at the file.
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(normalized, "\n") {
		lines = lines[:len(lines)-1]
	}
	return &ParsedSource{Path: path, Lines: lines}
}

// LineCount returns the number of lines.
func (p *ParsedSource) LineCount() int { return len(p.Lines) }

// Slice returns lines [start, end] (1-based, inclusive), right-stripped,
// joined with "\n". Matches the evidence validator's normalization exactly
// (spec §4.1 step 2).
func (p *ParsedSource) Slice(start, end int) (string, error) {
	if start < 1 || end > len(p.Lines) || start > end {
		return "", fmt.Errorf("source: line range [%d,%d] out of bounds (1..%d)", start, end, len(p.Lines))
	}
	parts := make([]string, 0, end-start+1)
	for i := start - 1; i < end; i++ {
		parts = append(parts, strings.TrimRight(p.Lines[i], " \t"))
	}
	return strings.Join(parts, "\n"), nil
}

// Prefixed renders the full document with 1-based "<n>: " line-number
// prefixes — the exact text handed to the LLM so line numbers are
// observable to the model (spec §4.1).
func (p *ParsedSource) Prefixed() string {
	var b strings.Builder
	for i, line := range p.Lines {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

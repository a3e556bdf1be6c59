// Package output places rendered documents on disk or on a stream.
//
// Single-page runs get a flat name derived from the URL (example_com_docs.json).
// Site-wide runs mirror the URL path below the output directory
// (docs/intro.json), with the site root written as index.<ext>.
package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

// Writer writes rendered documents either to files under Dir or, when a
// stream is set, to that stream.
type Writer struct {
	Dir string

	mu     sync.Mutex
	stream io.Writer
}

// New creates a Writer targeting dir, creating it if needed.
// An empty dir means the current working directory.
func New(dir string) (*Writer, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{Dir: dir}, nil
}

// NewStream creates a Writer that sends every document to w instead of disk.
// Writes are serialized so concurrent callers never interleave.
func NewStream(w io.Writer) *Writer {
	return &Writer{stream: w}
}

// WriteOnly stores a single-page result. It returns the path written, or
// "-" when writing to a stream.
func (w *Writer) WriteOnly(rawURL string, data []byte, ext string) (string, error) {
	if w.stream != nil {
		return w.writeStream(data)
	}

	path := filepath.Join(w.Dir, FlatName(rawURL)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteAll stores one page of a site-wide run at the path mirroring its URL.
func (w *Writer) WriteAll(rawURL string, data []byte, ext string) (string, error) {
	if w.stream != nil {
		return w.writeStream(data)
	}

	rel, err := MirrorPath(rawURL)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.Dir, rel+ext)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (w *Writer) writeStream(data []byte) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stream.Write(data); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return "-", nil
}

// FlatName converts a URL into a single file name without extension.
//
//	https://example.com/docs/intro -> example_com_docs_intro
func FlatName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return sanitize(rawURL)
	}

	parts := []string{sanitize(parsed.Host)}
	for _, seg := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if seg != "" {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// MirrorPath returns the slash-separated relative path, without extension,
// under which a site-wide run stores rawURL. Dot segments are dropped so the
// result never leaves the output directory.
func MirrorPath(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	var segs []string
	for _, seg := range strings.Split(parsed.Path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segs = append(segs, sanitize(seg))
	}
	if len(segs) == 0 {
		return "index", nil
	}
	return filepath.Join(segs...), nil
}

// sanitize replaces anything but ASCII letters, digits and '-' with '_'.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			return r
		}
		return '_'
	}, s)
}

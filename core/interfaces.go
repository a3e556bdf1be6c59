// Package core defines the data model and pipeline interfaces for pagemeta.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"net/http"
)

// OpenTagRecord holds the attributes of one open-tag occurrence
// (e.g. a single <meta> or <img>), keyed by lowercase attribute name.
type OpenTagRecord map[string]string

// ScanResult maps a tag name to its records in document order.
type ScanResult map[string][]OpenTagRecord

// FetchResult holds the decoded HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string
	FinalURL    string // after redirects
	StatusCode  int
	HTML        string
	Header      http.Header
	ContentType string
}

// ParsedDocument is the metadata extracted from a single HTML document.
// Sections that matched nothing are omitted from the JSON output.
type ParsedDocument struct {
	Title       string            `json:"title,omitempty"`
	Headlines   []string          `json:"headlines,omitempty"`
	Description string            `json:"description,omitempty"`
	Keywords    string            `json:"keywords,omitempty"`
	URL         string            `json:"url,omitempty"`
	OpenGraph   map[string]string `json:"openGraph,omitempty"`
	Twitter     map[string]string `json:"twitter,omitempty"`
	Images      []string          `json:"images,omitempty"`
}

// Fetcher retrieves raw HTML from a URL.
// Implementations return a result for every HTTP status and reserve the
// error for requests that could not complete.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Parser turns HTML and an optional base URL into a ParsedDocument.
type Parser interface {
	Parse(html string, baseURL string) *ParsedDocument
}

// Renderer converts a ParsedDocument into a final output format.
type Renderer interface {
	Render(doc *ParsedDocument) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// Package aggregate groups scanned open-tag records into metadata sections.
//
// Every aggregator reads the same core.ScanResult and returns nil when no
// record matched, so callers can omit empty sections instead of storing
// empty maps or slices.
package aggregate

import (
	"strings"

	"github.com/gaurav-prasanna/pagemeta/core"
	"github.com/gaurav-prasanna/pagemeta/core/normalize"
	"github.com/gaurav-prasanna/pagemeta/core/scan"
)

const (
	openGraphPrefix = "og:"
	twitterPrefix   = "twitter:"
)

// DefaultMetas collects <meta name="description|keywords"> content keyed by
// the lowercase name. A repeated name keeps the last value.
func DefaultMetas(result core.ScanResult) map[string]string {
	data := make(map[string]string)

	for _, meta := range scan.Filter(result, "meta", "name", `^\s*(description|keywords)\s*$`) {
		content, ok := meta["content"]
		if !ok {
			continue
		}
		data[strings.ToLower(strings.TrimSpace(meta["name"]))] = content
	}

	return nilIfEmpty(data)
}

// OpenGraph collects <meta property="og:*"> content keyed by the lowercase
// property with the prefix stripped. Empty content is skipped.
func OpenGraph(result core.ScanResult) map[string]string {
	data := make(map[string]string)

	for _, meta := range scan.Filter(result, "meta", "property", "^"+openGraphPrefix) {
		content := meta["content"]
		if content == "" {
			continue
		}
		data[stripPrefix(meta["property"], openGraphPrefix)] = content
	}

	return nilIfEmpty(data)
}

// Twitter collects <meta name="twitter:*"> values keyed by the lowercase
// name with the prefix stripped. The value comes from content, or from the
// value attribute some publishers use instead.
func Twitter(result core.ScanResult) map[string]string {
	data := make(map[string]string)

	for _, meta := range scan.Filter(result, "meta", "name", "^"+twitterPrefix) {
		value := meta["content"]
		if value == "" {
			value = meta["value"]
		}
		if value == "" {
			continue
		}
		data[stripPrefix(meta["name"], twitterPrefix)] = value
	}

	return nilIfEmpty(data)
}

// Images collects image URLs from <link rel="image_src"> then <img src>,
// resolved against base. Duplicates and data: URIs are dropped; the first
// occurrence fixes the position.
func Images(result core.ScanResult, base string) []string {
	var images []string
	seen := make(map[string]bool)

	add := func(candidate string) {
		if strings.TrimSpace(candidate) == "" || normalize.IsDataURI(candidate) {
			return
		}
		resolved := normalize.ResolveURL(candidate, base)
		if seen[resolved] || normalize.IsDataURI(resolved) {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	}

	for _, link := range scan.Filter(result, "link", "rel", `(^|\s)image_src(\s|$)`) {
		add(link["href"])
	}
	for _, img := range scan.Filter(result, "img", "src", "") {
		add(img["src"])
	}

	return images
}

// stripPrefix removes prefix case-insensitively and lowercases the rest.
func stripPrefix(key, prefix string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.TrimPrefix(key, prefix)
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

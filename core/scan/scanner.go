// Package scan locates known tag shapes in raw HTML without building a tree.
//
// Two matchers cover everything the extractor needs:
//   - closed tags (<title>…</title>, <h1>…</h1>) yield their inner text
//   - open tags (<meta>, <img>, <link>) yield their attribute maps
//
// Both are plain regular expressions run over the markup, so malformed or
// partial documents degrade to fewer matches instead of failing.
package scan

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pagemeta/core"
)

// attrRegex matches name="value" and name='value' pairs inside a tag.
var attrRegex = regexp.MustCompile(`([\w:.-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// Match holds every inner text found for one closed tag, in document order.
type Match struct {
	values []string
}

// Single returns the first occurrence.
func (m Match) Single() string {
	if len(m.values) == 0 {
		return ""
	}
	return m.values[0]
}

// All returns every occurrence. A single match is a one-element slice.
func (m Match) All() []string {
	out := make([]string, len(m.values))
	copy(out, m.values)
	return out
}

// IsMany reports whether the tag occurred more than once.
func (m Match) IsMany() bool {
	return len(m.values) > 1
}

// Len returns the number of occurrences.
func (m Match) Len() int {
	return len(m.values)
}

// ClosedTags captures the inner text of each tag in tags, storing matches
// under the tag's label. Tags that never occur have no entry.
//
// Matching is case-insensitive, tolerates whitespace around the delimiters
// and the closing slash, and allows attributes on the opening tag. Inner
// text is returned trimmed but otherwise verbatim: entities are not decoded
// and nested markup is kept.
func ClosedTags(html string, tags map[string]string) map[string]Match {
	data := make(map[string]Match, len(tags))

	for tag, label := range tags {
		re, err := cachedRegexp(closedTagPattern(tag))
		if err != nil {
			continue
		}

		matches := re.FindAllStringSubmatch(html, -1)
		if len(matches) == 0 {
			continue
		}

		m := data[label]
		for _, match := range matches {
			m.values = append(m.values, strings.TrimSpace(match[1]))
		}
		data[label] = m
	}

	return data
}

// OpenTags scans html once per tag name and collects the attributes of
// every occurrence. Occurrences without any quoted attribute are skipped.
func OpenTags(html string, tags ...string) core.ScanResult {
	data := make(core.ScanResult)

	for _, tag := range tags {
		re, err := cachedRegexp(openTagPattern(tag))
		if err != nil {
			continue
		}

		for _, match := range re.FindAllStringSubmatch(html, -1) {
			if record := parseAttributes(match[1]); record != nil {
				data[tag] = append(data[tag], record)
			}
		}
	}

	return data
}

// parseAttributes extracts quoted attribute pairs from the span between a
// tag name and its closing '>'. Names are lowercased; a repeated name keeps
// the last value. Returns nil when nothing was found.
func parseAttributes(span string) core.OpenTagRecord {
	matches := attrRegex.FindAllStringSubmatch(span, -1)
	if len(matches) == 0 {
		return nil
	}

	record := make(core.OpenTagRecord, len(matches))
	for _, m := range matches {
		value := m[2]
		if m[0][len(m[0])-1] == '\'' {
			value = m[3]
		}
		record[strings.ToLower(m[1])] = value
	}
	return record
}

func closedTagPattern(tag string) string {
	t := regexp.QuoteMeta(tag)
	return `(?is)<\s*` + t + `(?:\s[^>]*)?>(.*?)<\s*/\s*` + t + `\s*>`
}

// openTagPattern requires whitespace, '/' or '>' right after the name so
// custom elements like <meta-data> or <img-slider> never match.
func openTagPattern(tag string) string {
	return `(?is)<\s*` + regexp.QuoteMeta(tag) + `((?:\s[^>]*?)?)/?\s*>`
}

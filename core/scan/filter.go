package scan

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/pagemeta/core"
)

// regexCache holds compiled patterns shared by all callers.
var regexCache sync.Map

// cachedRegexp returns a compiled pattern, compiling it at most once per process.
func cachedRegexp(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCache.Store(pattern, re)
	return re, nil
}

// Filter returns the records for tag whose attr is present and, when pattern
// is non-empty, whose value matches pattern case-insensitively. The pattern
// is unanchored regexp syntax.
//
// An empty attr returns every record for tag. An unknown tag or an invalid
// pattern yields an empty slice.
func Filter(result core.ScanResult, tag, attr, pattern string) []core.OpenTagRecord {
	records, ok := result[tag]
	if !ok {
		return []core.OpenTagRecord{}
	}

	if attr == "" {
		out := make([]core.OpenTagRecord, len(records))
		copy(out, records)
		return out
	}

	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = cachedRegexp("(?i)" + pattern)
		if err != nil {
			return []core.OpenTagRecord{}
		}
	}

	key := strings.ToLower(attr)
	out := make([]core.OpenTagRecord, 0, len(records))
	for _, record := range records {
		value, ok := record[key]
		if !ok {
			continue
		}
		if re != nil && !re.MatchString(value) {
			continue
		}
		out = append(out, record)
	}
	return out
}

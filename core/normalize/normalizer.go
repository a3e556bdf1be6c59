// Package normalize turns resource references found in a page into absolute
// URLs against the page's base URL.
//
// Resolution is deliberately naive: relative references are concatenated
// onto the base rather than resolved per RFC 3986, so "..", query strings and
// fragments are carried through as written.
package normalize

import (
	"net/url"
	"strings"
)

// ResolveURL returns candidate as an absolute URL against base.
//
//   - empty base or empty candidate: candidate unchanged
//   - scheme and host present: unchanged
//   - host without scheme ("//cdn/x.png"): base scheme prefixed
//   - non-resource scheme ("data:", "mailto:", "javascript:", ...): unchanged
//   - anything else, including colon-bearing paths such as "photo:1.png":
//     base and candidate joined with a single slash
func ResolveURL(candidate, base string) string {
	candidate = strings.TrimSpace(candidate)
	if base == "" || candidate == "" {
		return candidate
	}

	u, err := url.Parse(candidate)
	if err == nil {
		switch {
		case u.Host != "" && u.Scheme != "":
			return candidate
		case u.Host != "":
			b, err := url.Parse(base)
			if err != nil || b.Scheme == "" {
				return candidate
			}
			return b.Scheme + ":" + candidate
		case isOpaqueScheme(u.Scheme):
			return candidate
		}
	}

	return trimSlash(base) + "/" + trimSlash(candidate)
}

// opaqueSchemes never name a resource under the base, so they pass through.
var opaqueSchemes = map[string]struct{}{
	"data":       {},
	"mailto":     {},
	"javascript": {},
	"tel":        {},
	"blob":       {},
	"about":      {},
}

func isOpaqueScheme(scheme string) bool {
	_, ok := opaqueSchemes[strings.ToLower(scheme)]
	return ok
}

// Origin returns the scheme and host of rawURL ("https://example.com"),
// dropping path, query and fragment. It returns "" when either is missing.
func Origin(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// IsDataURI reports whether s is an inline data: URI.
func IsDataURI(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// trimSlash removes at most one leading and one trailing slash.
func trimSlash(s string) string {
	s = strings.TrimPrefix(s, "/")
	return strings.TrimSuffix(s, "/")
}

package crawl

import (
	"net/url"
	"path"
	"strings"
)

// staticExtensions are path suffixes that never lead to an HTML page.
var staticExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {}, ".bmp": {},
	".css": {}, ".js": {}, ".mjs": {}, ".json": {}, ".xml": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
	".mp4": {}, ".webm": {}, ".mp3": {}, ".wav": {},
	".zip": {}, ".tar": {}, ".gz": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
}

// IsSameHost reports whether rawURL is on host (host:port compared exactly,
// case-insensitively).
func IsSameHost(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, host)
}

// IsStaticAsset reports whether rawURL points at an asset by extension.
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, ok := staticExtensions[strings.ToLower(path.Ext(parsed.Path))]
	return ok
}

// NormalizeURL drops the fragment and any trailing slash except the root's,
// and lowercases the scheme and host.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}

	return parsed.String()
}

package fetch

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// decodeBody converts body to a UTF-8 string and reports the charset label
// it decoded from.
//
// The declared charset in contentType wins. Without one, a body that is
// already valid UTF-8 passes through; anything else is sniffed. Unknown
// labels pass the body through unchanged.
func decodeBody(body []byte, contentType string) (string, string) {
	label := declaredCharset(contentType)
	if label == "" {
		if utf8.Valid(body) {
			return string(body), "utf-8"
		}
		label = detectCharset(body)
	}

	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return string(body), label
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return string(body), label
	}
	return string(decoded), name
}

// declaredCharset returns the lowercase charset parameter of a Content-Type
// header value, or "" when absent.
func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

// detectCharset guesses the encoding of body, defaulting to windows-1252,
// the usual encoding of undeclared legacy pages.
func detectCharset(body []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil || result.Charset == "" {
		return "windows-1252"
	}
	return strings.ToLower(result.Charset)
}

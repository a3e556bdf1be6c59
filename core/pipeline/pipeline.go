// Package pipeline runs fetch → parse for a single URL.
//
// The URL the fetch ended on after redirects is handed to the parser as an
// explicit argument, so concurrent runs never share state.
package pipeline

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaurav-prasanna/pagemeta/core"
	"github.com/gaurav-prasanna/pagemeta/core/extract"
	"github.com/gaurav-prasanna/pagemeta/core/normalize"
)

// Pipeline fetches pages and parses their metadata.
type Pipeline struct {
	fetcher core.Fetcher
	parser  core.Parser
	logger  *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParser replaces the default extractor.
func WithParser(parser core.Parser) Option {
	return func(p *Pipeline) {
		p.parser = parser
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline around fetcher.
func New(fetcher core.Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: fetcher,
		parser:  extract.New(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchAndParse fetches url and parses the response body.
//
// A request that cannot complete yields a *core.TransportError; a status
// other than 200 yields a *core.HTTPError. No document is returned on
// failure. On success the document's base URL is the scheme and host of
// the URL the fetch ended on.
func (p *Pipeline) FetchAndParse(ctx context.Context, url string) (*core.ParsedDocument, error) {
	result, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		var transportErr *core.TransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		p.logger.Debug("fetch failed", zap.String("url", url), zap.Error(err))
		return nil, &core.TransportError{URL: url, Err: err}
	}

	if result.StatusCode != http.StatusOK {
		p.logger.Debug("unexpected status",
			zap.String("url", url),
			zap.Int("status", result.StatusCode))
		return nil, &core.HTTPError{URL: url, StatusCode: result.StatusCode}
	}

	base := baseURL(result, url)
	doc := p.parser.Parse(result.HTML, base)

	p.logger.Debug("parsed page",
		zap.String("url", url),
		zap.String("base_url", base),
		zap.Int("images", len(doc.Images)),
		zap.Int("headlines", len(doc.Headlines)))

	return doc, nil
}

// baseURL derives the parse base from the post-redirect URL, falling back
// to the requested URL.
func baseURL(result *core.FetchResult, requested string) string {
	if origin := normalize.Origin(result.FinalURL); origin != "" {
		return origin
	}
	return normalize.Origin(requested)
}

// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with redirect following, configurable TLS
// verification and a legacy-charset fallback, handing back unicode-safe HTML.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/pagemeta/core"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "pagemeta/1.0 (https://github.com/gaurav-prasanna/pagemeta)"
	defaultMaxRedirects = 10
	defaultMaxBodySize  = 10 * 1024 * 1024 // 10MB
)

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client       *resty.Client
	timeout      time.Duration
	userAgent    string
	verifyTLS    bool
	maxRedirects int
	maxBodySize  int64
	logger       *zap.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithVerifyTLS turns certificate verification on or off.
// Verification is off by default.
func WithVerifyTLS(verify bool) Option {
	return func(f *HTTPFetcher) {
		f.verifyTLS = verify
	}
}

// WithMaxRedirects bounds how many redirects are followed.
func WithMaxRedirects(n int) Option {
	return func(f *HTTPFetcher) {
		f.maxRedirects = n
	}
}

// WithMaxBodySize limits how many bytes of the body are read.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// New creates an HTTPFetcher with sensible defaults.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		timeout:      defaultTimeout,
		userAgent:    defaultUserAgent,
		maxRedirects: defaultMaxRedirects,
		maxBodySize:  defaultMaxBodySize,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = resty.New().
		SetTimeout(f.timeout).
		SetHeader("User-Agent", f.userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(f.maxRedirects)).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: !f.verifyTLS}). //nolint:gosec // verification is opt-in
		SetLogger(f.logger.Sugar())

	return f
}

// Fetch retrieves the page at url. Any HTTP status yields a result; the
// error is reserved for requests that could not complete. Hitting the
// redirect limit yields the last 3xx response with an empty body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		if last := redirectLimitResponse(resp); last != nil {
			f.logger.Warn("redirect limit reached",
				zap.String("url", url),
				zap.String("last_url", last.Request.URL.String()),
				zap.Int("status", last.StatusCode),
				zap.Int("max_redirects", f.maxRedirects))
			return &core.FetchResult{
				URL:         url,
				FinalURL:    last.Request.URL.String(),
				StatusCode:  last.StatusCode,
				Header:      cloneHeader(last.Header),
				ContentType: last.Header.Get("Content-Type"),
			}, nil
		}
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(raw)) == f.maxBodySize {
		f.logger.Warn("response body truncated",
			zap.String("url", url),
			zap.Int64("limit", f.maxBodySize))
	}

	contentType := resp.Header().Get("Content-Type")
	html, label := decodeBody(raw, contentType)

	finalURL := url
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	f.logger.Debug("fetched page",
		zap.String("url", url),
		zap.String("final_url", finalURL),
		zap.Int("status", resp.StatusCode()),
		zap.String("charset", label),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", resp.Time()))

	return &core.FetchResult{
		URL:         url,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode(),
		HTML:        html,
		Header:      cloneHeader(resp.Header()),
		ContentType: contentType,
	}, nil
}

// redirectLimitResponse returns the last 3xx response when the request
// stopped at the redirect policy. net/http only hands back a response
// alongside an error in that case; its body is already closed.
func redirectLimitResponse(resp *resty.Response) *http.Response {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Request == nil {
		return nil
	}
	if code := resp.RawResponse.StatusCode; code < 300 || code > 399 {
		return nil
	}
	return resp.RawResponse
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}

// Package crawl finds the pages of a site for multi-page runs.
// Discovery tries /sitemap.xml first and falls back to a breadth-first walk
// of same-host <a href> links. All requests go through a core.Fetcher.
package crawl

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/pagemeta/core"
)

// DefaultMaxPages bounds discovery when the caller passes a non-positive limit.
const DefaultMaxPages = 100

type urlSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// Option configures discovery.
type Option func(*discoverer)

// WithLogger sets the logger used for skipped pages and sitemap failures.
func WithLogger(logger *zap.Logger) Option {
	return func(d *discoverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

type discoverer struct {
	fetcher  core.Fetcher
	host     string
	maxPages int
	logger   *zap.Logger
}

// DiscoverAll returns up to maxPages same-host page URLs for baseURL in
// discovery order. The normalized baseURL is always first.
func DiscoverAll(ctx context.Context, baseURL string, fetcher core.Fetcher, maxPages int, opts ...Option) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	d := &discoverer{
		fetcher:  fetcher,
		host:     parsed.Host,
		maxPages: maxPages,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	start := NormalizeURL(baseURL)
	sitemap := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, parsed.Host)

	urls, err := d.fromSitemap(ctx, sitemap, start)
	var httpErr *core.HTTPError
	switch {
	case errors.As(err, &httpErr):
		d.logger.Debug("sitemap unavailable, crawling links", zap.String("sitemap", sitemap), zap.Int("status", httpErr.StatusCode))
	case err != nil:
		d.logger.Warn("sitemap unreadable, crawling links", zap.String("sitemap", sitemap), zap.Error(err))
	case len(urls) > 1:
		return urls, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.fromLinks(ctx, start)
}

// fromSitemap reads a sitemap (or one level of sitemap index) and keeps the
// same-host, non-asset locations.
func (d *discoverer) fromSitemap(ctx context.Context, sitemapURL, start string) ([]string, error) {
	set, err := d.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	queue := NewQueue(d.maxPages)
	queue.Add(start)
	d.addLocs(queue, set)

	for _, child := range set.Sitemaps {
		if queue.Full() {
			break
		}
		if !IsSameHost(child.Loc, d.host) {
			continue
		}
		nested, err := d.fetchSitemap(ctx, strings.TrimSpace(child.Loc))
		if err != nil {
			d.logger.Debug("skipping nested sitemap", zap.String("sitemap", child.Loc), zap.Error(err))
			continue
		}
		d.addLocs(queue, nested)
	}

	return queue.All(), nil
}

func (d *discoverer) addLocs(queue *Queue, set *urlSet) {
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Loc)
		if IsSameHost(loc, d.host) && !IsStaticAsset(loc) {
			queue.Add(NormalizeURL(loc))
		}
	}
}

func (d *discoverer) fetchSitemap(ctx context.Context, sitemapURL string) (*urlSet, error) {
	result, err := d.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	if result.StatusCode != http.StatusOK {
		return nil, &core.HTTPError{URL: sitemapURL, StatusCode: result.StatusCode}
	}

	var set urlSet
	if err := newSitemapDecoder(result.HTML).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding sitemap: %w", err)
	}
	return &set, nil
}

// newSitemapDecoder decodes a body the fetcher has already converted to
// UTF-8. Any encoding named in the XML declaration is accepted as is and
// the text is not decoded again.
func newSitemapDecoder(body string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec
}

// fromLinks walks same-host links breadth first until the queue drains or
// maxPages URLs are known. Pages that fail to load are kept but not expanded.
func (d *discoverer) fromLinks(ctx context.Context, start string) ([]string, error) {
	queue := NewQueue(d.maxPages)
	queue.Add(start)

	for queue.HasNext() && !queue.Full() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue.Next()
		result, err := d.fetcher.Fetch(ctx, current)
		if err != nil {
			d.logger.Debug("skipping page", zap.String("url", current), zap.Error(err))
			continue
		}
		if result.StatusCode != http.StatusOK {
			d.logger.Debug("skipping page", zap.String("url", current), zap.Int("status", result.StatusCode))
			continue
		}

		base := current
		if result.FinalURL != "" {
			base = result.FinalURL
		}

		links, err := extractLinks(result.HTML, base)
		if err != nil {
			continue
		}
		for _, link := range links {
			if IsSameHost(link, d.host) && !IsStaticAsset(link) {
				queue.Add(NormalizeURL(link))
			}
		}
	}

	return queue.All(), nil
}

// extractLinks returns the resolved href of every <a> in document order.
func extractLinks(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveLink(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// resolveLink resolves href against base, dropping non-navigational links
// and fragments.
func resolveLink(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

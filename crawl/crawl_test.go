package crawl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagemeta/core"
	"github.com/gaurav-prasanna/pagemeta/core/fetch"
)

// siteFetcher serves canned pages; unknown URLs answer 404.
type siteFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func (f *siteFetcher) Fetch(_ context.Context, u string) (*core.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, u)
	if f.fail[u] {
		return nil, errors.New("connection refused")
	}
	body, ok := f.pages[u]
	if !ok {
		return &core.FetchResult{URL: u, FinalURL: u, StatusCode: http.StatusNotFound}, nil
	}
	return &core.FetchResult{URL: u, FinalURL: u, StatusCode: http.StatusOK, HTML: body}, nil
}

func TestDiscoverFromSitemap(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"http://site.com/sitemap.xml": `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>http://site.com/a/</loc></url>
  <url><loc> http://site.com/b#top </loc></url>
  <url><loc>http://other.com/c</loc></url>
  <url><loc>http://site.com/logo.png</loc></url>
  <url><loc>http://site.com/a</loc></url>
</urlset>`,
	}}

	urls, err := DiscoverAll(context.Background(), "http://site.com", f, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://site.com/", "http://site.com/a", "http://site.com/b"}, urls)
}

func TestDiscoverFromSitemapWithLegacyDeclaration(t *testing.T) {
	t.Parallel()

	// The fetcher hands over UTF-8 text even when the declaration says otherwise.
	f := &siteFetcher{pages: map[string]string{
		"http://site.com/sitemap.xml": `<?xml version="1.0" encoding="ISO-8859-1"?>
<urlset><url><loc>http://site.com/café</loc></url><url><loc>http://site.com/b</loc></url></urlset>`,
	}}

	urls, err := DiscoverAll(context.Background(), "http://site.com", f, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://site.com/", "http://site.com/caf%C3%A9", "http://site.com/b"}, urls)
}

func TestDiscoverLatin1SitemapOverHTTP(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=ISO-8859-1")
		body := `<?xml version="1.0" encoding="ISO-8859-1"?>` +
			`<urlset><url><loc>` + server.URL + "/caf\xe9</loc></url>" +
			`<url><loc>` + server.URL + `/about</loc></url></urlset>`
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	urls, err := DiscoverAll(context.Background(), server.URL, fetch.New(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/", server.URL + "/caf%C3%A9", server.URL + "/about"}, urls)
}

func TestDiscoverFromSitemapIndex(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"http://site.com/sitemap.xml": `<sitemapindex>
  <sitemap><loc>http://site.com/pages.xml</loc></sitemap>
  <sitemap><loc>http://elsewhere.com/pages.xml</loc></sitemap>
</sitemapindex>`,
		"http://site.com/pages.xml": `<urlset><url><loc>http://site.com/p1</loc></url></urlset>`,
	}}

	urls, err := DiscoverAll(context.Background(), "http://site.com/", f, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://site.com/", "http://site.com/p1"}, urls)
	assert.NotContains(t, f.calls, "http://elsewhere.com/pages.xml")
}

func TestDiscoverFallsBackToLinks(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{
		pages: map[string]string{
			"http://site.com/": `<a href="/docs/">Docs</a>
				<a href="about#team">About</a>
				<a href="mailto:me@site.com">Mail</a>
				<a href="javascript:void(0)">JS</a>
				<a href="http://other.com/">Other</a>
				<a href="/style.css">CSS</a>
				<a href="#top">Top</a>`,
			"http://site.com/docs":  `<a href="/docs/intro">Intro</a><a href="/">Home</a>`,
			"http://site.com/about": `<a href="/broken">Broken</a>`,
		},
		fail: map[string]bool{"http://site.com/broken": true},
	}

	urls, err := DiscoverAll(context.Background(), "http://site.com", f, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://site.com/",
		"http://site.com/docs",
		"http://site.com/about",
		"http://site.com/docs/intro",
		"http://site.com/broken",
	}, urls)
}

func TestDiscoverRespectsMaxPages(t *testing.T) {
	t.Parallel()

	f := &siteFetcher{pages: map[string]string{
		"http://site.com/": `<a href="/1">1</a><a href="/2">2</a><a href="/3">3</a><a href="/4">4</a>`,
	}}

	urls, err := DiscoverAll(context.Background(), "http://site.com/", f, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://site.com/", "http://site.com/1", "http://site.com/2"}, urls)
}

func TestDiscoverRejectsRelativeBase(t *testing.T) {
	t.Parallel()

	_, err := DiscoverAll(context.Background(), "/docs", &siteFetcher{}, 0)
	assert.Error(t, err)
}

func TestDiscoverCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DiscoverAll(ctx, "http://site.com", &siteFetcher{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue(t *testing.T) {
	t.Parallel()

	q := NewQueue(3)
	assert.True(t, q.Add("a"))
	assert.False(t, q.Add("a"))
	assert.True(t, q.Add("b"))
	assert.True(t, q.Add("c"))
	assert.True(t, q.Full())
	assert.False(t, q.Add("d"))
	assert.Equal(t, 3, q.Len())

	var order []string
	for q.HasNext() {
		order = append(order, q.Next())
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)

	all := q.All()
	all[0] = "mutated"
	assert.Equal(t, "a", q.All()[0])

	unbounded := NewQueue(0)
	for _, u := range []string{"1", "2", "3", "4"} {
		unbounded.Add(u)
	}
	assert.False(t, unbounded.Full())
}

func TestRules(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSameHost("http://Site.com/x", "site.com"))
	assert.False(t, IsSameHost("http://site.com:8080/x", "site.com"))
	assert.False(t, IsSameHost("http://[::1", "site.com"))

	assert.True(t, IsStaticAsset("http://site.com/a/B.PNG"))
	assert.True(t, IsStaticAsset("http://site.com/app.js?v=2"))
	assert.False(t, IsStaticAsset("http://site.com/page.html"))
	assert.False(t, IsStaticAsset("http://site.com/docs"))

	assert.Equal(t, "http://site.com/", NormalizeURL("HTTP://Site.com"))
	assert.Equal(t, "http://site.com/", NormalizeURL("http://site.com/#x"))
	assert.Equal(t, "http://site.com/docs?q=1", NormalizeURL("http://site.com/docs/?q=1#frag"))
}

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body, status and headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("User-Agent"), "pagemeta-test")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<title>Hello</title>"))
		}))
		defer server.Close()

		f := New(WithUserAgent("pagemeta-test"))
		result, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "<title>Hello</title>", result.HTML)
		assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
		assert.Equal(t, "text/html; charset=utf-8", result.Header.Get("Content-Type"))
		assert.Equal(t, server.URL, result.URL)
	})

	t.Run("follows redirects and reports the final url", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/page", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new/page", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<h1>moved</h1>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		result, err := New().Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, server.URL+"/old", result.URL)
		assert.Equal(t, server.URL+"/new/page", result.FinalURL)
	})

	t.Run("non-200 status is a result, not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		result, err := New().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
	})

	t.Run("redirect loop stops at the limit with the last 3xx", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		}))
		defer server.Close()

		result, err := New(WithMaxRedirects(3)).Fetch(context.Background(), server.URL+"/start")
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, result.StatusCode)
		assert.Equal(t, server.URL+"/loop", result.FinalURL)
		assert.Empty(t, result.HTML)
	})

	t.Run("zero redirects returns the first 3xx", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/old" {
				http.Redirect(w, r, "/new", http.StatusMovedPermanently)
				return
			}
			_, _ = w.Write([]byte("new"))
		}))
		defer server.Close()

		result, err := New(WithMaxRedirects(0)).Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, result.StatusCode)
		assert.Equal(t, server.URL+"/old", result.FinalURL)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := New(WithTimeout(2 * time.Second)).Fetch(context.Background(), url)
		require.Error(t, err)
	})

	t.Run("legacy charset is transcoded", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<title>Caf\xe9</title>"))
		}))
		defer server.Close()

		result, err := New().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<title>Café</title>", result.HTML)
	})

	t.Run("body is truncated to the size limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		}))
		defer server.Close()

		result, err := New(WithMaxBodySize(1024)).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, result.HTML, 1024)
	})

	t.Run("self-signed certificates are accepted by default", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<title>tls</title>"))
		}))
		defer server.Close()

		result, err := New().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<title>tls</title>", result.HTML)

		_, err = New(WithVerifyTLS(true)).Fetch(context.Background(), server.URL)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("x"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New().Fetch(ctx, server.URL)
		assert.Error(t, err)
	})
}

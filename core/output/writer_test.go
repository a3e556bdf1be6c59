package output

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "example_com"},
		{"https://example.com/", "example_com"},
		{"https://example.com/docs/intro", "example_com_docs_intro"},
		{"http://foo.com:8080/a//b/", "foo_com_8080_a_b"},
		{"not a url", "not_a_url"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FlatName(tt.in))
		})
	}
}

func TestMirrorPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://site.com", "index"},
		{"https://site.com/", "index"},
		{"https://site.com/docs/intro", filepath.Join("docs", "intro")},
		{"https://site.com/docs/intro/", filepath.Join("docs", "intro")},
		{"https://site.com/../../etc/passwd", filepath.Join("etc", "passwd")},
		{"https://site.com/a%20b.html", "a_b_html"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := MirrorPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := MirrorPath("http://[::1")
	assert.Error(t, err)
}

func TestWriteOnly(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.WriteOnly("https://example.com/docs", []byte(`{}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example_com_docs.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	root, err := w.WriteAll("https://site.com/", []byte("root"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.md"), root)

	page, err := w.WriteAll("https://site.com/docs/intro", []byte("intro"), ".md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docs", "intro.md"), page)

	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, "intro", string(data))
}

func TestStreamWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewStream(&buf)

	path, err := w.WriteOnly("https://example.com", []byte("a\n"), ".json")
	require.NoError(t, err)
	assert.Equal(t, "-", path)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.WriteAll("https://example.com/x", []byte("line\n"), ".json")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 11, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("a\n")))
}

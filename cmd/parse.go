// Package cmd: parse command.
// Orchestrates fetch → parse → render → write for one page, a local file,
// or every page discovered on a site.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/pagemeta/config"
	"github.com/gaurav-prasanna/pagemeta/core"
	"github.com/gaurav-prasanna/pagemeta/core/extract"
	"github.com/gaurav-prasanna/pagemeta/core/fetch"
	"github.com/gaurav-prasanna/pagemeta/core/output"
	"github.com/gaurav-prasanna/pagemeta/core/pipeline"
	"github.com/gaurav-prasanna/pagemeta/core/render"
	"github.com/gaurav-prasanna/pagemeta/crawl"
)

type parseFlags struct {
	all      bool
	json     bool
	markdown bool
	pdf      bool

	file    string
	baseURL string

	outputDir   string
	stdout      bool
	insecure    bool
	timeout     time.Duration
	maxPages    int
	concurrency int
}

func newParseCmd(a *app) *cobra.Command {
	f := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [url]",
		Short: "Extract metadata from a URL or a local HTML file",
		Long: `Parse fetches a page, extracts its metadata and writes it in the chosen
format. JSON is the default.

Examples:
  pagemeta parse https://example.com
  pagemeta parse https://example.com --markdown --output_dir ./out
  pagemeta parse https://example.com --all --json --concurrency 8
  pagemeta parse --file page.html --base-url https://example.com --stdout`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, a, f, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.all, "all", false, "Parse every page discovered on the site")
	fl.BoolVar(&f.json, "json", false, "Output JSON (default)")
	fl.BoolVar(&f.markdown, "markdown", false, "Output Markdown")
	fl.BoolVar(&f.pdf, "pdf", false, "Output PDF")
	fl.StringVar(&f.file, "file", "", "Parse a local HTML file instead of fetching (- for stdin)")
	fl.StringVar(&f.baseURL, "base-url", "", "Base URL for resolving relative image paths with --file")
	fl.StringVar(&f.outputDir, "output_dir", "", "Output directory (default: current directory)")
	fl.BoolVar(&f.stdout, "stdout", false, "Write output to stdout instead of files")
	fl.BoolVar(&f.insecure, "insecure", false, "Skip TLS certificate verification")
	fl.DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "HTTP request timeout")
	fl.IntVar(&f.maxPages, "max-pages", config.DefaultMaxPages, "Maximum pages discovered with --all")
	fl.IntVar(&f.concurrency, "concurrency", config.DefaultConcurrency, "Pages parsed in parallel with --all")

	return cmd
}

func runParse(cmd *cobra.Command, a *app, f *parseFlags, args []string) error {
	if err := validateFlags(f, args); err != nil {
		return err
	}

	cfg := applyFlags(cmd, a.cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	renderer := selectRenderer(f)

	writer, status, err := newWriter(cmd, cfg, f)
	if err != nil {
		return err
	}

	if f.file != "" {
		return runFile(cmd, f, renderer, writer, status)
	}

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithVerifyTLS(cfg.VerifyTLS),
		fetch.WithMaxRedirects(cfg.MaxRedirects),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(a.logger),
	)
	p := pipeline.New(fetcher, pipeline.WithLogger(a.logger))

	ctx := cmd.Context()
	if f.all {
		return runAll(ctx, a.logger, args[0], cfg, fetcher, p, renderer, writer, status)
	}
	return runOnly(ctx, args[0], p, renderer, writer, status)
}

// validateFlags checks mode, source and format combinations.
func validateFlags(f *parseFlags, args []string) error {
	formats := 0
	for _, set := range []bool{f.json, f.markdown, f.pdf} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formats)
	}

	switch {
	case f.file != "" && len(args) > 0:
		return errors.New("--file and a URL argument are mutually exclusive")
	case f.file == "" && len(args) == 0:
		return errors.New("a URL argument or --file is required")
	case f.file != "" && f.all:
		return errors.New("--all cannot be used with --file")
	case f.file == "" && f.baseURL != "":
		return errors.New("--base-url is only valid with --file")
	}

	if len(args) > 0 {
		if err := requireAbsoluteURL(args[0]); err != nil {
			return err
		}
	}
	if f.baseURL != "" {
		if err := requireAbsoluteURL(f.baseURL); err != nil {
			return err
		}
	}
	return nil
}

func requireAbsoluteURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", raw)
	}
	return nil
}

// applyFlags overlays explicitly set flags onto the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg config.Config, f *parseFlags) config.Config {
	fl := cmd.Flags()
	if fl.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if fl.Changed("max-pages") {
		cfg.MaxPages = f.maxPages
	}
	if fl.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if fl.Changed("output_dir") {
		cfg.OutputDir = f.outputDir
	}
	if f.insecure {
		cfg.VerifyTLS = false
	}
	return cfg
}

func selectRenderer(f *parseFlags) core.Renderer {
	switch {
	case f.markdown:
		return render.NewMarkdownRenderer()
	case f.pdf:
		return render.NewPDFRenderer()
	default:
		return render.NewJSONRenderer()
	}
}

// newWriter returns the output writer and the stream progress lines go to.
// Progress moves to stderr when documents are written to stdout.
func newWriter(cmd *cobra.Command, cfg config.Config, f *parseFlags) (*output.Writer, io.Writer, error) {
	if f.stdout {
		return output.NewStream(cmd.OutOrStdout()), cmd.ErrOrStderr(), nil
	}

	w, err := output.New(cfg.OutputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing output writer: %w", err)
	}
	return w, cmd.OutOrStdout(), nil
}

// runFile parses a local document without any network access.
func runFile(cmd *cobra.Command, f *parseFlags, renderer core.Renderer, writer *output.Writer, status io.Writer) error {
	html, err := readSource(cmd, f.file)
	if err != nil {
		return err
	}

	doc := extract.Parse(html, f.baseURL)
	data, err := renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	name := f.baseURL
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(f.file), filepath.Ext(f.file))
	}
	path, err := writer.WriteOnly(name, data, renderer.Extension())
	if err != nil {
		return err
	}
	reportWritten(status, path)
	return nil
}

func readSource(cmd *cobra.Command, file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file) //nolint:gosec // user-selected input file
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(data), nil
}

// runOnly processes a single URL.
func runOnly(ctx context.Context, rawURL string, p *pipeline.Pipeline, renderer core.Renderer, writer *output.Writer, status io.Writer) error {
	data, err := processURL(ctx, rawURL, p, renderer)
	if err != nil {
		return err
	}

	path, err := writer.WriteOnly(rawURL, data, renderer.Extension())
	if err != nil {
		return err
	}
	reportWritten(status, path)
	return nil
}

// runAll discovers the site's pages and processes them concurrently.
// A failed page is reported and skipped; the run fails only when every page failed.
func runAll(
	ctx context.Context,
	logger *zap.Logger,
	rawURL string,
	cfg config.Config,
	fetcher core.Fetcher,
	p *pipeline.Pipeline,
	renderer core.Renderer,
	writer *output.Writer,
	status io.Writer,
) error {
	fmt.Fprintf(status, "Discovering pages from %s...\n", rawURL)

	urls, err := crawl.DiscoverAll(ctx, rawURL, fetcher, cfg.MaxPages, crawl.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	fmt.Fprintf(status, "Found %d pages to process\n", len(urls))

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for _, pageURL := range urls {
		g.Go(func() error {
			data, err := processURL(gctx, pageURL, p, renderer)
			if err == nil {
				var path string
				path, err = writer.WriteAll(pageURL, data, renderer.Extension())
				if err == nil {
					logger.Info("page written", zap.String("url", pageURL), zap.String("path", path))
					return nil
				}
			}

			failed.Add(1)
			logger.Warn("page failed", zap.String("url", pageURL), zap.Error(err))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	n := failed.Load()
	if n > 0 {
		fmt.Fprintf(status, "%d/%d pages failed\n", n, len(urls))
	}
	if n == int64(len(urls)) {
		return fmt.Errorf("all %d pages failed", n)
	}
	return nil
}

// processURL runs fetch, parse and render for one URL.
func processURL(ctx context.Context, rawURL string, p *pipeline.Pipeline, renderer core.Renderer) ([]byte, error) {
	doc, err := p.FetchAndParse(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return data, nil
}

func reportWritten(status io.Writer, path string) {
	if path == "-" {
		return
	}
	fmt.Fprintf(status, "✓ Written: %s\n", path)
}

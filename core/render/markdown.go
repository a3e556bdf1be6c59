// Package render provides output renderers for the pagemeta pipeline.
// This file implements the Markdown renderer, a human-readable report of
// every section found in the document.
package render

import (
	"fmt"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/pagemeta/core"
)

// MarkdownRenderer writes a Markdown report of a ParsedDocument.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render builds the report. Title and headlines keep the inner markup they
// were scanned with, so they are converted to Markdown rather than printed raw.
func (r *MarkdownRenderer) Render(doc *core.ParsedDocument) ([]byte, error) {
	if doc == nil {
		doc = &core.ParsedDocument{}
	}

	var buf strings.Builder

	heading := doc.URL
	if doc.Title != "" {
		title, err := inlineMarkdown(doc.Title)
		if err != nil {
			return nil, fmt.Errorf("converting title: %w", err)
		}
		heading = title
	}
	if heading == "" {
		heading = "Untitled document"
	}
	fmt.Fprintf(&buf, "# %s\n\n", heading)

	if doc.URL != "" {
		fmt.Fprintf(&buf, "- **URL:** %s\n", doc.URL)
	}
	if doc.Description != "" {
		fmt.Fprintf(&buf, "- **Description:** %s\n", doc.Description)
	}
	if doc.Keywords != "" {
		fmt.Fprintf(&buf, "- **Keywords:** %s\n", doc.Keywords)
	}

	if len(doc.Headlines) > 0 {
		buf.WriteString("\n## Headlines\n\n")
		for _, h := range doc.Headlines {
			text, err := inlineMarkdown(h)
			if err != nil {
				return nil, fmt.Errorf("converting headline: %w", err)
			}
			fmt.Fprintf(&buf, "- %s\n", text)
		}
	}

	writeTable(&buf, "Open Graph", doc.OpenGraph)
	writeTable(&buf, "Twitter Card", doc.Twitter)

	if len(doc.Images) > 0 {
		buf.WriteString("\n## Images\n\n")
		for _, img := range doc.Images {
			fmt.Fprintf(&buf, "- <%s>\n", img)
		}
	}

	return []byte(buf.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// inlineMarkdown converts an inner-HTML fragment to a single Markdown line.
func inlineMarkdown(fragment string) (string, error) {
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(md), " "), nil
}

// writeTable renders a property table with keys in sorted order.
func writeTable(buf *strings.Builder, title string, props map[string]string) {
	if len(props) == 0 {
		return
	}

	fmt.Fprintf(buf, "\n## %s\n\n", title)
	buf.WriteString("| Property | Value |\n")
	buf.WriteString("|---|---|\n")
	for _, key := range sortedKeys(props) {
		fmt.Fprintf(buf, "| %s | %s |\n", escapeCell(key), escapeCell(props[key]))
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

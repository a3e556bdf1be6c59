// Package extract implements the Parser interface.
// It assembles a ParsedDocument from raw HTML by:
//  1. Scanning closed tags (<title>, <h1>) for inner text
//  2. Scanning open tags (<meta>, <img>, <link>) once for attributes
//  3. Running the aggregators and merging their sections
//
// Parsing never fails: anything that cannot be found is left out.
package extract

import (
	"github.com/gaurav-prasanna/pagemeta/core"
	"github.com/gaurav-prasanna/pagemeta/core/aggregate"
	"github.com/gaurav-prasanna/pagemeta/core/normalize"
	"github.com/gaurav-prasanna/pagemeta/core/scan"
)

// closedTags maps the closed tags we read to their document labels.
var closedTags = map[string]string{
	"title": "title",
	"h1":    "headlines",
}

// openTags are scanned in a single pass and shared by all aggregators.
var openTags = []string{"meta", "img", "link"}

// HTMLExtractor is a stateless core.Parser.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Parse implements core.Parser.
func (e *HTMLExtractor) Parse(html string, baseURL string) *core.ParsedDocument {
	return Parse(html, baseURL)
}

// Parse extracts metadata from html. Relative image references are resolved
// against baseURL, which is also reported as the document URL.
func Parse(html string, baseURL string) *core.ParsedDocument {
	doc := &core.ParsedDocument{}

	closed := scan.ClosedTags(html, closedTags)
	if m, ok := closed["title"]; ok {
		doc.Title = m.Single()
	}
	if m, ok := closed["headlines"]; ok {
		doc.Headlines = m.All()
	}

	tags := scan.OpenTags(html, openTags...)

	if metas := aggregate.DefaultMetas(tags); metas != nil {
		doc.Description = metas["description"]
		doc.Keywords = metas["keywords"]
	}

	doc.Images = aggregate.Images(tags, baseURL)

	// Twitter first, then Open Graph: both insert at the front, so an
	// Open Graph image ends up ahead of a Twitter one.
	if twitter := aggregate.Twitter(tags); twitter != nil {
		doc.Twitter = twitter
		doc.Images = prependImage(doc.Images, twitter["image"], baseURL)
	}

	if og := aggregate.OpenGraph(tags); og != nil {
		doc.OpenGraph = og
		doc.Images = prependImage(doc.Images, og["image"], baseURL)
	}

	doc.URL = baseURL

	return doc
}

// prependImage inserts image at the front of images when it is usable, new,
// and images already holds at least one entry.
func prependImage(images []string, image, baseURL string) []string {
	if image == "" || len(images) == 0 || normalize.IsDataURI(image) {
		return images
	}

	resolved := normalize.ResolveURL(image, baseURL)
	for _, existing := range images {
		if existing == resolved {
			return images
		}
	}

	out := make([]string, 0, len(images)+1)
	out = append(out, resolved)
	return append(out, images...)
}

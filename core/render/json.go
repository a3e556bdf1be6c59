// Package render: JSON renderer.
// Emits the ParsedDocument as indented JSON. Map keys are sorted by
// encoding/json, so identical documents render to identical bytes.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/pagemeta/core"
)

// JSONRenderer produces structured JSON output.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals doc as indented JSON.
func (r *JSONRenderer) Render(doc *core.ParsedDocument) ([]byte, error) {
	if doc == nil {
		doc = &core.ParsedDocument{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

package guide

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderHTML converts the document to HTML. The document is first
// re-serialized to canonical markdown (without frontmatter) so the HTML
// output is independent of the original source formatting.
func RenderHTML(doc *Document) (string, error) {
	body := *doc
	body.Frontmatter = ""
	src := Render(&body)
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("guide: render html: %w", err)
	}
	return buf.String(), nil
}

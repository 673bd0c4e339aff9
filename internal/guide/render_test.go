package guide

import (
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestRender_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"sample": sampleGuide,
		"frontmatter": "---\ntitle: Team Guide\nowner: frontend\n---\n\n# Guide\n\nbody text\n",
		"preamble":    "intro paragraph\n\n# First\n\ntext\n\n## Nested\n\nmore\n",
		"empty code":  "# G\n\n```\n```\n",
		"bare table":  "# G\n\n| one | two |\n| --- | --- |\n",
		"multiline prose": "# G\n\nline one\nline two\nline three\n\nsecond paragraph\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			first := mustParse(t, input)
			rendered := Render(first)
			second := mustParse(t, rendered)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("round trip mismatch\nfirst:  %+v\nsecond: %+v\nrendered:\n%s", first, second, rendered)
			}
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	doc := mustParse(t, sampleGuide)
	a := Render(doc)
	b := Render(doc)
	if a != b {
		t.Error("render output differs between calls")
	}
}

func TestRender_CanonicalTable(t *testing.T) {
	doc := mustParse(t, "# G\n\n|a|b|\n|---|---|\n|1|2|\n")
	out := Render(doc)
	if !strings.Contains(out, "| a | b |") {
		t.Errorf("table not canonicalised:\n%s", out)
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Errorf("delimiter row missing:\n%s", out)
	}
}

func TestRender_CodeLabelEmitted(t *testing.T) {
	doc := mustParse(t, "# G\n\n```javascript good\nconst x = 1;\n```\n")
	out := Render(doc)
	if !strings.Contains(out, "```javascript good") {
		t.Errorf("label missing:\n%s", out)
	}
}

func TestRenderHTML_HeadingsAndTables(t *testing.T) {
	doc := mustParse(t, sampleGuide)
	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<table>") {
		t.Errorf("unexpected html:\n%s", html)
	}
}

func TestRenderHTML_SkipsFrontmatter(t *testing.T) {
	doc := mustParse(t, "---\ntitle: X\n---\n\n# G\n\ntext\n")
	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(html, "title: X") {
		t.Errorf("frontmatter leaked into html:\n%s", html)
	}
}

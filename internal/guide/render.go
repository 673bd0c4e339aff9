package guide

import "strings"

// Render serializes the document back to the guide dialect in canonical
// form: one blank line between blocks, single-space cell padding in
// tables, and a delimiter row after every table header. Rendering is
// deterministic and round-trips: Parse(Render(d)) is structurally equal
// to d for any parsed d.
func Render(doc *Document) string {
	var b strings.Builder

	if doc.Frontmatter != "" {
		b.WriteString("---\n")
		b.WriteString(doc.Frontmatter)
		b.WriteString("\n---\n\n")
	}

	for _, blk := range doc.Preamble {
		renderBlock(&b, blk)
	}
	for _, s := range doc.Sections {
		b.WriteString(strings.Repeat("#", s.Level))
		b.WriteByte(' ')
		b.WriteString(s.Title)
		b.WriteString("\n\n")
		for _, blk := range s.Blocks {
			renderBlock(&b, blk)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func renderBlock(b *strings.Builder, blk Block) {
	switch blk.Kind {
	case BlockProse:
		b.WriteString(blk.Text)
		b.WriteString("\n\n")

	case BlockCode:
		b.WriteString("```")
		b.WriteString(blk.Language)
		if blk.Label != "" {
			b.WriteByte(' ')
			b.WriteString(blk.Label)
		}
		b.WriteByte('\n')
		if blk.Code != "" {
			b.WriteString(blk.Code)
			b.WriteByte('\n')
		}
		b.WriteString("```\n\n")

	case BlockTable:
		writeRow(b, blk.Headers)
		delim := make([]string, len(blk.Headers))
		for i := range delim {
			delim[i] = "---"
		}
		writeRow(b, delim)
		for _, row := range blk.Rows {
			writeRow(b, row)
		}
		b.WriteByte('\n')
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteByte('|')
	for _, c := range cells {
		b.WriteByte(' ')
		b.WriteString(c)
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}

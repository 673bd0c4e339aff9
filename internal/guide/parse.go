package guide

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	anchorLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(#([A-Za-z0-9][A-Za-z0-9-]*)\)`)
	docLinkRe    = regexp.MustCompile(`\[([^\]]*)\]\(([^)#\s]+\.md)\)`)
	delimCellRe  = regexp.MustCompile(`^:?-+:?$`)
)

var codeLabels = map[string]struct{}{
	LabelBad:    {},
	LabelGood:   {},
	LabelFine:   {},
	LabelBetter: {},
}

// Parse splits raw guide content into sections by heading markers and into
// blocks by fenced-code and pipe-table syntax. It fails with *ParseError
// when a code fence is unterminated or a table row's cell count disagrees
// with its header; every other input parses.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	raw, body := splitFrontmatter(data)
	doc.Frontmatter = raw
	if raw != "" {
		var meta map[string]any
		// Frontmatter was already validated by splitFrontmatter.
		_ = yaml.Unmarshal([]byte(raw), &meta)
		doc.Meta = meta
	}

	lines := strings.Split(body, "\n")
	// Offset reported line numbers past the frontmatter.
	offset := 0
	if raw != "" {
		offset = strings.Count(raw, "\n") + 3
	}

	slugs := newSlugger()
	var current *Section
	appendBlock := func(b Block) {
		if current == nil {
			doc.Preamble = append(doc.Preamble, b)
			return
		}
		current.Blocks = append(current.Blocks, b)
	}

	var prose []string
	flushProse := func() {
		if len(prose) == 0 {
			return
		}
		appendBlock(Block{Kind: BlockProse, Text: strings.Join(prose, "\n")})
		prose = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch {
		case strings.TrimSpace(line) == "":
			flushProse()

		case headingRe.MatchString(line):
			flushProse()
			m := headingRe.FindStringSubmatch(line)
			title := m[2]
			current = &Section{
				ID:    slugs.slug(title),
				Title: title,
				Level: len(m[1]),
			}
			doc.Sections = append(doc.Sections, current)

		case strings.HasPrefix(line, "```"):
			flushProse()
			block, next, err := parseFence(lines, i, offset)
			if err != nil {
				return nil, err
			}
			appendBlock(block)
			i = next

		case strings.HasPrefix(line, "|"):
			flushProse()
			block, next, err := parseTable(lines, i, offset)
			if err != nil {
				return nil, err
			}
			appendBlock(block)
			i = next

		default:
			prose = append(prose, line)
		}
	}
	flushProse()

	doc.Title = deriveTitle(doc)
	return doc, nil
}

// splitFrontmatter separates YAML frontmatter (between leading ---
// delimiters) from the body. Missing or invalid frontmatter is not an
// error: the entire content becomes body.
func splitFrontmatter(data []byte) (raw, body string) {
	const delim = "---"
	text := string(data)
	trimmed := strings.TrimLeft(text, "\n\r")
	if !strings.HasPrefix(trimmed, delim+"\n") {
		return "", text
	}
	rest := trimmed[len(delim)+1:]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return "", text
	}
	raw = rest[:idx]
	after := rest[idx+1+len(delim):]
	body = strings.TrimLeft(after, "\n\r")

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return "", text
	}
	return raw, body
}

// parseFence consumes a fenced code block starting at lines[start] and
// returns the block plus the index of the closing fence line.
func parseFence(lines []string, start, offset int) (Block, int, error) {
	info := strings.TrimSpace(strings.TrimPrefix(lines[start], "```"))
	fields := strings.Fields(info)

	b := Block{Kind: BlockCode}
	if len(fields) > 0 {
		b.Language = fields[0]
	}
	if len(fields) > 1 {
		if _, ok := codeLabels[fields[1]]; ok {
			b.Label = fields[1]
		}
	}

	var code []string
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			b.Code = strings.Join(code, "\n")
			return b, i, nil
		}
		code = append(code, lines[i])
	}
	return Block{}, 0, &ParseError{Line: offset + start + 1, Msg: "unterminated code fence"}
}

// parseTable consumes consecutive pipe-delimited rows starting at
// lines[start]. The first row is the header; an optional delimiter row
// (---) follows; every data row must match the header's column count.
func parseTable(lines []string, start, offset int) (Block, int, error) {
	b := Block{Kind: BlockTable, Headers: splitRow(lines[start])}

	end := start
	for i := start + 1; i < len(lines) && strings.HasPrefix(lines[i], "|"); i++ {
		cells := splitRow(lines[i])
		end = i
		if isDelimiterRow(cells) {
			continue
		}
		if len(cells) != len(b.Headers) {
			return Block{}, 0, &ParseError{
				Line: offset + i + 1,
				Msg:  "table row has " + strconv.Itoa(len(cells)) + " cells, header has " + strconv.Itoa(len(b.Headers)),
			}
		}
		b.Rows = append(b.Rows, cells)
	}
	return b, end, nil
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func isDelimiterRow(cells []string) bool {
	for _, c := range cells {
		if !delimCellRe.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first level-1 section title, otherwise empty string.
func deriveTitle(doc *Document) string {
	if doc.Meta != nil {
		if t, ok := doc.Meta["title"].(string); ok && t != "" {
			return t
		}
	}
	for _, s := range doc.Sections {
		if s.Level == 1 {
			return s.Title
		}
	}
	return ""
}

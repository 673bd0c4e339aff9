// Package guide implements the style-guide document model: parsing the
// guide dialect (headings, fenced code examples, pipe tables), validating
// table-of-contents links and agreement tables, and canonical rendering.
package guide

import "strings"

// BlockKind discriminates the Block variants.
type BlockKind int

// Block kinds.
const (
	BlockProse BlockKind = iota
	BlockCode
	BlockTable
)

// Code example labels recognised in fence info strings.
const (
	LabelBad    = "bad"
	LabelGood   = "good"
	LabelFine   = "fine"
	LabelBetter = "better"
)

// Block is one unit of section content: a prose passage, a labeled code
// example, or a pipe-delimited table. Kind selects which fields are set.
type Block struct {
	Kind BlockKind

	// Prose.
	Text string

	// Code example.
	Language string
	Label    string // "bad", "good", "fine", "better", or empty
	Code     string

	// Table.
	Headers []string
	Rows    [][]string
}

// Section is a titled, anchored unit of the guide.
type Section struct {
	ID     string // slug, unique within the document
	Title  string
	Level  int // heading depth, 1-6
	Blocks []Block
}

// Document is a parsed style guide.
type Document struct {
	Path        string
	Frontmatter string         // raw YAML between the leading --- fences, verbatim
	Meta        map[string]any // parsed frontmatter, nil when absent
	Title       string
	Preamble    []Block // content before the first heading
	Sections    []*Section
}

// TocEntry is a table-of-contents link referencing a section by anchor id.
type TocEntry struct {
	Label    string `json:"label"`
	TargetID string `json:"target_id"`
}

// AgreementRow is one row of the team decisions table.
type AgreementRow struct {
	Decision string `json:"decision"`
	Detail   string `json:"detail"`
}

// SectionByID returns the section with the given slug, or nil.
func (d *Document) SectionByID(id string) *Section {
	for _, s := range d.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// TocEntries returns every anchor link found in prose blocks, in document
// order. Entries are derived, not stored, so they always reflect the
// current block content.
func (d *Document) TocEntries() []TocEntry {
	var out []TocEntry
	collect := func(blocks []Block) {
		for _, b := range blocks {
			if b.Kind != BlockProse {
				continue
			}
			for _, m := range anchorLinkRe.FindAllStringSubmatch(b.Text, -1) {
				out = append(out, TocEntry{Label: m[1], TargetID: m[2]})
			}
		}
	}
	collect(d.Preamble)
	for _, s := range d.Sections {
		collect(s.Blocks)
	}
	return out
}

// Agreements returns the decision rows from every table inside the
// "agreements" section. Tables need at least two columns; narrower tables
// are skipped. A document without an agreements section has no rows.
func (d *Document) Agreements() []AgreementRow {
	sec := d.SectionByID("agreements")
	if sec == nil {
		return nil
	}
	var out []AgreementRow
	for _, b := range sec.Blocks {
		if b.Kind != BlockTable || len(b.Headers) < 2 {
			continue
		}
		for _, row := range b.Rows {
			out = append(out, AgreementRow{Decision: row[0], Detail: row[1]})
		}
	}
	return out
}

// CrossRefs returns deduplicated relative links to other guide documents
// (inline links whose target ends in .md), in first-seen order.
func (d *Document) CrossRefs() []string {
	seen := make(map[string]struct{})
	var out []string
	collect := func(blocks []Block) {
		for _, b := range blocks {
			if b.Kind != BlockProse {
				continue
			}
			for _, m := range docLinkRe.FindAllStringSubmatch(b.Text, -1) {
				target := strings.TrimPrefix(strings.TrimSpace(m[2]), "./")
				if target == "" {
					continue
				}
				if _, ok := seen[target]; ok {
					continue
				}
				seen[target] = struct{}{}
				out = append(out, target)
			}
		}
	}
	collect(d.Preamble)
	for _, s := range d.Sections {
		collect(s.Blocks)
	}
	return out
}

package guide

import "fmt"

// ParseError reports structurally malformed markup. It is fatal to Parse;
// the caller must stop processing the affected document.
type ParseError struct {
	Line int // 1-based line number in the input
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("guide: parse: line %d: %s", e.Line, e.Msg)
}

// BrokenLinkError reports a table-of-contents entry whose target anchor
// resolves to no section. Collected and reported, never raised.
type BrokenLinkError struct {
	EntryLabel      string `json:"entry_label"`
	MissingTargetID string `json:"missing_target_id"`
}

func (e BrokenLinkError) Error() string {
	return fmt.Sprintf("guide: broken link %q -> #%s", e.EntryLabel, e.MissingTargetID)
}

// DuplicateKeyError reports a decision key repeated in the agreements
// table. Keys are compared case-insensitively.
type DuplicateKeyError struct {
	Decision        string `json:"decision"` // lowercased key
	OccurrenceCount int    `json:"occurrence_count"`
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("guide: duplicate decision %q (%d occurrences)", e.Decision, e.OccurrenceCount)
}

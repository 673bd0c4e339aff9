package guide

import "strings"

// ValidateTOC checks that every table-of-contents entry resolves to an
// existing section anchor. It is pure and total: all broken links are
// enumerated and an empty result is the success case.
func ValidateTOC(doc *Document) []BrokenLinkError {
	ids := make(map[string]struct{}, len(doc.Sections))
	for _, s := range doc.Sections {
		ids[s.ID] = struct{}{}
	}

	var out []BrokenLinkError
	for _, e := range doc.TocEntries() {
		if _, ok := ids[e.TargetID]; !ok {
			out = append(out, BrokenLinkError{
				EntryLabel:      e.Label,
				MissingTargetID: e.TargetID,
			})
		}
	}
	return out
}

// ValidateAgreements scans the agreements table for repeated decision
// keys. Keys are compared case-insensitively and every duplicate is
// reported once, in first-occurrence order, with its total count.
func ValidateAgreements(doc *Document) []DuplicateKeyError {
	rows := doc.Agreements()

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[strings.ToLower(r.Decision)]++
	}

	var out []DuplicateKeyError
	reported := make(map[string]struct{})
	for _, r := range rows {
		key := strings.ToLower(r.Decision)
		if counts[key] < 2 {
			continue
		}
		if _, ok := reported[key]; ok {
			continue
		}
		reported[key] = struct{}{}
		out = append(out, DuplicateKeyError{Decision: key, OccurrenceCount: counts[key]})
	}
	return out
}

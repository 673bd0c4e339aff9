package guide

import (
	"strconv"
	"strings"
)

// Slugify converts a heading title to its anchor id: lowercase, spaces to
// hyphens, everything outside [a-z0-9-] dropped, runs of hyphens collapsed.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// slugger hands out document-unique slugs. The second occurrence of a
// title gets a -2 suffix, the third -3, and so on, so duplicate headings
// never collide and the assignment is deterministic.
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

func (s *slugger) slug(title string) string {
	base := Slugify(title)
	if base == "" {
		base = "section"
	}
	s.seen[base]++
	if n := s.seen[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}

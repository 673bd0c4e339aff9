package index

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/abdulrhmanalqassas/guidekit/internal/checksum"
	"github.com/abdulrhmanalqassas/guidekit/internal/guide"
	"github.com/abdulrhmanalqassas/guidekit/internal/storage"
)

// Sync walks the guide library and brings the index up to date:
//   - new/changed files are parsed, validated, and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexGuide(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteGuide(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// FindingsFor runs both validators on a parsed document and converts the
// discrepancies to index findings.
func FindingsFor(path string, doc *guide.Document) []Finding {
	var out []Finding
	for _, e := range guide.ValidateTOC(doc) {
		out = append(out, Finding{
			Path:    path,
			Kind:    FindingBrokenLink,
			Subject: e.MissingTargetID,
			Detail:  e.EntryLabel,
		})
	}
	for _, e := range guide.ValidateAgreements(doc) {
		out = append(out, Finding{
			Path:    path,
			Kind:    FindingDuplicateKey,
			Subject: e.Decision,
			Detail:  strconv.Itoa(e.OccurrenceCount) + " occurrences",
		})
	}
	return out
}

// indexGuide parses and validates data and upserts the result. A document
// that fails to parse is still indexed, carrying a parse_error finding, so
// authors see the problem in listings instead of the file silently
// disappearing from the index.
func indexGuide(db *DB, path string, data []byte) error {
	cs := checksum.Sum(data)
	now := time.Now()

	doc, err := guide.Parse(data)
	if err != nil {
		var pe *guide.ParseError
		if !errors.As(err, &pe) {
			return err
		}
		row := GuideRow{Path: path, Checksum: cs, UpdatedAt: now}
		finding := Finding{
			Path:    path,
			Kind:    FindingParse,
			Subject: "line " + strconv.Itoa(pe.Line),
			Detail:  pe.Msg,
		}
		return db.UpsertGuide(row, string(data), nil, []Finding{finding})
	}

	findings := FindingsFor(path, doc)
	broken, dups := 0, 0
	for _, f := range findings {
		switch f.Kind {
		case FindingBrokenLink:
			broken++
		case FindingDuplicateKey:
			dups++
		}
	}

	row := GuideRow{
		Path:          path,
		Title:         doc.Title,
		Checksum:      cs,
		Sections:      len(doc.Sections),
		BrokenLinks:   broken,
		DuplicateKeys: dups,
		UpdatedAt:     now,
	}
	return db.UpsertGuide(row, string(data), doc.CrossRefs(), findings)
}

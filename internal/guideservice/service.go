// Package guideservice coordinates storage, parsing, validation, and
// index operations for the API, CLI, and MCP surfaces.
package guideservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abdulrhmanalqassas/guidekit/internal/apperr"
	"github.com/abdulrhmanalqassas/guidekit/internal/checksum"
	"github.com/abdulrhmanalqassas/guidekit/internal/guide"
	"github.com/abdulrhmanalqassas/guidekit/internal/index"
	"github.com/abdulrhmanalqassas/guidekit/internal/storage"
)

// Render formats accepted by RenderGuide.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// SectionInfo summarises one section for API responses.
type SectionInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

// ValidationReport is the full set of discrepancies for one document.
// Empty slices mean the document is internally consistent.
type ValidationReport struct {
	BrokenLinks   []guide.BrokenLinkError   `json:"broken_links"`
	DuplicateKeys []guide.DuplicateKeyError `json:"duplicate_keys"`
}

// Clean reports whether the document has no findings.
func (r ValidationReport) Clean() bool {
	return len(r.BrokenLinks) == 0 && len(r.DuplicateKeys) == 0
}

// GuideDetail is the full representation of a guide document.
type GuideDetail struct {
	Path        string           `json:"path"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Checksum    string           `json:"checksum"`
	Sections    []SectionInfo    `json:"sections"`
	Frontmatter map[string]any   `json:"frontmatter,omitempty"`
	Backlinks   []string         `json:"backlinks"`
	Report      ValidationReport `json:"report"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// GuideListItem is a lightweight item in a list response.
type GuideListItem struct {
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	Checksum      string    `json:"checksum"`
	Sections      int       `json:"sections"`
	BrokenLinks   int       `json:"broken_links"`
	DuplicateKeys int       `json:"duplicate_keys"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new guide service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// GetGuide reads a guide from storage, parses and validates it, and
// enriches it with backlinks from the index.
func (s *Service) GetGuide(_ context.Context, path string) (*GuideDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildGuideDetail(path, data)
}

// CreateGuide writes a new guide and indexes it. The content must parse.
func (s *Service) CreateGuide(_ context.Context, path string, content []byte) (*GuideDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if _, err := guide.Parse(content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildGuideDetail(path, content)
}

// UpdateGuide writes updated content with optimistic concurrency.
func (s *Service) UpdateGuide(_ context.Context, path string, content []byte, ifMatch string) (*GuideDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	if _, err := guide.Parse(content); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildGuideDetail(path, content)
}

// DeleteGuide removes a guide from storage and index.
func (s *Service) DeleteGuide(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteGuide(path)
}

// ListGuides returns paginated guides with their finding counts.
func (s *Service) ListGuides(_ context.Context, limit, offset int, sort string) ([]GuideListItem, int, error) {
	rows, total, err := s.db.ListGuides(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]GuideListItem, len(rows))
	for i, r := range rows {
		items[i] = GuideListItem{
			Path:          r.Path,
			Title:         r.Title,
			Checksum:      r.Checksum,
			Sections:      r.Sections,
			BrokenLinks:   r.BrokenLinks,
			DuplicateKeys: r.DuplicateKeys,
			UpdatedAt:     r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Validate parses the stored guide and runs both validators.
func (s *Service) Validate(_ context.Context, path string) (*ValidationReport, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	doc, err := guide.Parse(data)
	if err != nil {
		return nil, err
	}
	report := buildReport(doc)
	return &report, nil
}

// Report returns every recorded finding across the library.
func (s *Service) Report(_ context.Context) ([]index.Finding, error) {
	findings, err := s.db.AllFindings()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(findings), nil
}

// RenderGuide re-serializes a stored guide. format is "markdown"
// (canonical dialect form) or "html".
func (s *Service) RenderGuide(_ context.Context, path, format string) (string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.ErrNotFound
		}
		return "", err
	}
	doc, err := guide.Parse(data)
	if err != nil {
		return "", err
	}
	switch format {
	case "", FormatMarkdown:
		return guide.Render(doc), nil
	case FormatHTML:
		return guide.RenderHTML(doc)
	default:
		return "", fmt.Errorf("guideservice: unknown render format %q", format)
	}
}

// FormatGuide rewrites a guide in canonical form in place and reindexes it.
func (s *Service) FormatGuide(ctx context.Context, path string) error {
	canonical, err := s.RenderGuide(ctx, path, FormatMarkdown)
	if err != nil {
		return err
	}
	data := []byte(canonical)
	if err := s.store.Write(path, data); err != nil {
		return err
	}
	return s.IndexFile(path, data)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph returns all guides and cross-references for visualization.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// Backlinks returns all guide paths that reference the given target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	return s.db.Backlinks(target)
}

// IndexFile parses, validates, and upserts data into the index.
// Exported so that callers holding fresh content can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	doc, err := guide.Parse(data)
	if err != nil {
		return err
	}
	report := buildReport(doc)
	return s.db.UpsertGuide(index.GuideRow{
		Path:          path,
		Title:         doc.Title,
		Checksum:      checksum.Sum(data),
		Sections:      len(doc.Sections),
		BrokenLinks:   len(report.BrokenLinks),
		DuplicateKeys: len(report.DuplicateKeys),
		UpdatedAt:     time.Now(),
	}, string(data), doc.CrossRefs(), index.FindingsFor(path, doc))
}

// buildGuideDetail constructs a GuideDetail from raw data without
// re-reading the file.
func (s *Service) buildGuideDetail(path string, data []byte) (*GuideDetail, error) {
	doc, err := guide.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}
	sections := make([]SectionInfo, len(doc.Sections))
	for i, sec := range doc.Sections {
		sections[i] = SectionInfo{ID: sec.ID, Title: sec.Title, Level: sec.Level}
	}
	return &GuideDetail{
		Path:        path,
		Title:       doc.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Sections:    sections,
		Frontmatter: doc.Meta,
		Backlinks:   nonNilSlice(bl),
		Report:      buildReport(doc),
		UpdatedAt:   time.Now(),
	}, nil
}

func buildReport(doc *guide.Document) ValidationReport {
	return ValidationReport{
		BrokenLinks:   nonNilSlice(guide.ValidateTOC(doc)),
		DuplicateKeys: nonNilSlice(guide.ValidateAgreements(doc)),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

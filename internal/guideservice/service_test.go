package guideservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abdulrhmanalqassas/guidekit/internal/apperr"
	"github.com/abdulrhmanalqassas/guidekit/internal/guide"
	"github.com/abdulrhmanalqassas/guidekit/internal/index"
	"github.com/abdulrhmanalqassas/guidekit/internal/storage"
	"github.com/abdulrhmanalqassas/guidekit/internal/testutil"
)

const sampleContent = "# Sample Guide\n\nContents: [Agreements](#agreements).\n\n## Agreements\n\n| Decision | Detail |\n| --- | --- |\n| Linting | ESLint |\n"

func testService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	return NewService(store, db), store
}

func TestCreateGuide(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	detail, err := svc.CreateGuide(ctx, "sample.md", []byte(sampleContent))
	if err != nil {
		t.Fatalf("CreateGuide: %v", err)
	}
	if detail.Title != "Sample Guide" {
		t.Errorf("title = %q", detail.Title)
	}
	if len(detail.Sections) != 2 {
		t.Errorf("sections = %+v", detail.Sections)
	}
	if detail.Checksum == "" {
		t.Error("checksum empty")
	}
	if !detail.Report.Clean() {
		t.Errorf("report = %+v", detail.Report)
	}

	if _, err := svc.CreateGuide(ctx, "sample.md", []byte(sampleContent)); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second create err = %v", err)
	}
}

func TestCreateGuide_RejectsMalformed(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.CreateGuide(context.Background(), "bad.md", []byte("# Bad\n\n```js\nnope\n"))
	var pe *guide.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if pe.Line != 3 {
		t.Errorf("line = %d, want 3", pe.Line)
	}
}

func TestUpdateGuide_OptimisticConcurrency(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	created, err := svc.CreateGuide(ctx, "g.md", []byte(sampleContent))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateGuide(ctx, "g.md", []byte("# New\n\ntext\n"), "stale-checksum"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v", err)
	}

	updated, err := svc.UpdateGuide(ctx, "g.md", []byte("# New\n\ntext\n"), created.Checksum)
	if err != nil {
		t.Fatalf("UpdateGuide: %v", err)
	}
	if updated.Title != "New" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Checksum == created.Checksum {
		t.Error("checksum unchanged after update")
	}

	if _, err := svc.UpdateGuide(ctx, "missing.md", []byte("# X\n"), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing update err = %v", err)
	}
}

func TestDeleteGuide(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateGuide(ctx, "g.md", []byte(sampleContent)); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteGuide(ctx, "g.md"); err != nil {
		t.Fatalf("DeleteGuide: %v", err)
	}
	if _, err := svc.GetGuide(ctx, "g.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
}

func TestValidate_FindsBrokenLinkAndDuplicateKey(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	content := "# G\n\nSee [gone](#gone).\n\n## Agreements\n\n| Decision | Detail |\n| --- | --- |\n| Linting | a |\n| LINTING | b |\n"
	if _, err := svc.CreateGuide(ctx, "g.md", []byte(content)); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Validate(ctx, "g.md")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.BrokenLinks) != 1 || report.BrokenLinks[0].MissingTargetID != "gone" {
		t.Errorf("broken links = %+v", report.BrokenLinks)
	}
	if len(report.DuplicateKeys) != 1 || report.DuplicateKeys[0].Decision != "linting" {
		t.Errorf("duplicate keys = %+v", report.DuplicateKeys)
	}
	if report.DuplicateKeys[0].OccurrenceCount != 2 {
		t.Errorf("occurrence count = %d", report.DuplicateKeys[0].OccurrenceCount)
	}
}

func TestRenderGuide_Formats(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateGuide(ctx, "g.md", []byte("# G\n\n|a|b|\n|---|---|\n|1|2|\n")); err != nil {
		t.Fatal(err)
	}

	md, err := svc.RenderGuide(ctx, "g.md", FormatMarkdown)
	if err != nil {
		t.Fatalf("RenderGuide markdown: %v", err)
	}
	if !strings.Contains(md, "| a | b |") {
		t.Errorf("markdown not canonical:\n%s", md)
	}

	html, err := svc.RenderGuide(ctx, "g.md", FormatHTML)
	if err != nil {
		t.Fatalf("RenderGuide html: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("html = %s", html)
	}

	if _, err := svc.RenderGuide(ctx, "g.md", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatGuide_RewritesCanonical(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	messy := "#   Spaced Title\n\n|a|b|\n|---|---|\n|1|2|\n"
	if _, err := svc.CreateGuide(ctx, "g.md", []byte(messy)); err != nil {
		t.Fatal(err)
	}
	if err := svc.FormatGuide(ctx, "g.md"); err != nil {
		t.Fatalf("FormatGuide: %v", err)
	}

	data, err := store.Read("g.md")
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "# Spaced Title\n") {
		t.Errorf("heading not normalised:\n%s", got)
	}
	if !strings.Contains(got, "| a | b |") {
		t.Errorf("table not normalised:\n%s", got)
	}

	// Formatting is idempotent.
	if err := svc.FormatGuide(ctx, "g.md"); err != nil {
		t.Fatal(err)
	}
	again, _ := store.Read("g.md")
	if string(again) != got {
		t.Errorf("format not idempotent:\n%q\nvs\n%q", got, string(again))
	}
}

func TestBacklinksEnrichDetail(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateGuide(ctx, "a.md", []byte("# A\n\nSee [b](b.md).\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateGuide(ctx, "b.md", []byte("# B\n\ntext\n")); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.GetGuide(ctx, "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Backlinks) != 1 || detail.Backlinks[0] != "a.md" {
		t.Errorf("backlinks = %v", detail.Backlinks)
	}
}

func TestReport_AggregatesAcrossLibrary(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateGuide(ctx, "clean.md", []byte(sampleContent)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateGuide(ctx, "broken.md", []byte("# B\n\nSee [x](#missing).\n")); err != nil {
		t.Fatal(err)
	}

	findings, err := svc.Report(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %+v", findings)
	}
	if findings[0].Path != "broken.md" || findings[0].Kind != index.FindingBrokenLink {
		t.Errorf("finding = %+v", findings[0])
	}
}

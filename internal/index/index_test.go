package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "guidekit-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"guides", "findings", "refs"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := GuideRow{
		Path:      "style.md",
		Title:     "Style Guide",
		Checksum:  "abc123",
		Sections:  4,
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertGuide(row, "# Style Guide\nbody", []string{"react.md"}, nil); err != nil {
		t.Fatalf("UpsertGuide: %v", err)
	}
	cs, err := db.GetChecksum("style.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetGuide(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertGuide(GuideRow{Path: "g.md", Title: "G", Checksum: "1", Sections: 2, BrokenLinks: 1, UpdatedAt: time.Now()}, "body", nil, nil)

	g, err := db.GetGuide("g.md")
	if err != nil {
		t.Fatalf("GetGuide: %v", err)
	}
	if g == nil || g.Title != "G" || g.BrokenLinks != 1 {
		t.Errorf("row = %+v", g)
	}

	missing, err := db.GetGuide("nope.md")
	if err != nil || missing != nil {
		t.Errorf("expected nil row for missing guide, got %+v, err %v", missing, err)
	}
}

func TestFindings_ReplacedOnUpsert(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	first := []Finding{
		{Path: "f.md", Kind: FindingBrokenLink, Subject: "missing-id", Detail: "Intro"},
		{Path: "f.md", Kind: FindingDuplicateKey, Subject: "linting", Detail: "2 occurrences"},
	}
	_ = db.UpsertGuide(GuideRow{Path: "f.md", Checksum: "1", UpdatedAt: now}, "body", nil, first)

	got, err := db.Findings("f.md")
	if err != nil {
		t.Fatalf("Findings: %v", err)
	}
	if len(got) != 2 || got[0].Kind != FindingBrokenLink {
		t.Fatalf("findings = %+v", got)
	}

	// Re-validate with a clean result: findings must be replaced.
	_ = db.UpsertGuide(GuideRow{Path: "f.md", Checksum: "2", UpdatedAt: now}, "body", nil, nil)
	got, _ = db.Findings("f.md")
	if len(got) != 0 {
		t.Errorf("stale findings survived upsert: %+v", got)
	}
}

func TestAllFindings_OrderedByPath(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertGuide(GuideRow{Path: "b.md", Checksum: "1", UpdatedAt: now}, "", nil,
		[]Finding{{Path: "b.md", Kind: FindingParse, Subject: "line 3", Detail: "unterminated code fence"}})
	_ = db.UpsertGuide(GuideRow{Path: "a.md", Checksum: "1", UpdatedAt: now}, "", nil,
		[]Finding{{Path: "a.md", Kind: FindingBrokenLink, Subject: "x", Detail: "X"}})

	all, err := db.AllFindings()
	if err != nil {
		t.Fatalf("AllFindings: %v", err)
	}
	if len(all) != 2 || all[0].Path != "a.md" || all[1].Path != "b.md" {
		t.Errorf("findings = %+v", all)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertGuide(GuideRow{Path: "a.md", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"b.md"}, nil)
	_ = db.UpsertGuide(GuideRow{Path: "c.md", Checksum: "2", UpdatedAt: time.Now()}, "body", []string{"b.md"}, nil)

	bl, err := db.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
}

func TestDeleteGuide(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertGuide(GuideRow{Path: "del.md", Checksum: "x", UpdatedAt: time.Now()}, "body", []string{"target.md"},
		[]Finding{{Path: "del.md", Kind: FindingBrokenLink, Subject: "y", Detail: "Y"}})

	if err := db.DeleteGuide("del.md"); err != nil {
		t.Fatalf("DeleteGuide: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted guide still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("target.md")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
	fs, _ := db.Findings("del.md")
	if len(fs) != 0 {
		t.Errorf("expected 0 findings after delete, got %d", len(fs))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertGuide(GuideRow{Path: "up.md", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body", []string{"x.md"}, nil)
	_ = db.UpsertGuide(GuideRow{Path: "up.md", Title: "New", Checksum: "2", UpdatedAt: now}, "new body", []string{"y.md"}, nil)

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	bl, _ := db.Backlinks("x.md")
	if len(bl) != 0 {
		t.Error("old ref should be removed on upsert")
	}
	bl, _ = db.Backlinks("y.md")
	if len(bl) != 1 {
		t.Error("new ref should exist")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListGuides_SortAndTotal(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertGuide(GuideRow{Path: "b.md", Title: "Beta", Checksum: "1", UpdatedAt: now}, "", nil, nil)
	_ = db.UpsertGuide(GuideRow{Path: "a.md", Title: "Alpha", Checksum: "1", UpdatedAt: now.Add(time.Second)}, "", nil, nil)

	rows, total, err := db.ListGuides(10, 0, "path")
	if err != nil {
		t.Fatalf("ListGuides: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(rows) != 2 || rows[0].Path != "a.md" {
		t.Errorf("rows = %+v", rows)
	}

	rows, _, _ = db.ListGuides(1, 1, "path")
	if len(rows) != 1 || rows[0].Path != "b.md" {
		t.Errorf("pagination broken: %+v", rows)
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertGuide(GuideRow{Path: "a.md", Title: "A", Checksum: "1", UpdatedAt: now}, "", []string{"b.md"}, nil)
	_ = db.UpsertGuide(GuideRow{Path: "b.md", Title: "B", Checksum: "1", UpdatedAt: now}, "", nil, nil)

	nodes, links, err := db.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("nodes = %+v", nodes)
	}
	if len(links) != 1 || links[0].Source != "a.md" || links[0].Target != "b.md" {
		t.Errorf("links = %+v", links)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertGuide(GuideRow{Path: "s.md", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here", nil, nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Finding kinds stored in the findings table.
const (
	FindingParse        = "parse_error"
	FindingBrokenLink   = "broken_link"
	FindingDuplicateKey = "duplicate_key"
)

// GuideRow represents a row in the guides table.
type GuideRow struct {
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	Checksum      string    `json:"checksum"`
	Sections      int       `json:"sections"`
	BrokenLinks   int       `json:"broken_links"`
	DuplicateKeys int       `json:"duplicate_keys"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Finding is one validation discrepancy recorded for a guide.
type Finding struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// GraphNode is a guide document in the cross-reference graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GraphLink is a directed cross-reference between two guides.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// UpsertGuide replaces a guide row, its FTS entry, its findings, and its
// outbound refs within a transaction.
func (db *DB) UpsertGuide(g GuideRow, body string, refs []string, findings []Finding) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO guides (path, title, checksum, sections, broken_links, duplicate_keys, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title          = excluded.title,
			checksum       = excluded.checksum,
			sections       = excluded.sections,
			broken_links   = excluded.broken_links,
			duplicate_keys = excluded.duplicate_keys,
			body           = excluded.body,
			updated_at     = excluded.updated_at
	`, g.Path, g.Title, g.Checksum, g.Sections, g.BrokenLinks, g.DuplicateKeys, body, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert guide: %w", err)
	}

	// FTS upsert (no-op when the sqlite_fts5 tag is absent).
	if err := ftsUpsert(tx, g.Path, g.Title, body); err != nil {
		return err
	}

	// Replace findings.
	_, _ = tx.Exec(`DELETE FROM findings WHERE path = ?`, g.Path)
	if len(findings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO findings (path, kind, subject, detail) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare finding insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range findings {
			if _, err := stmt.Exec(g.Path, f.Kind, f.Subject, f.Detail); err != nil {
				return fmt.Errorf("index: insert finding: %w", err)
			}
		}
	}

	// Replace refs: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM refs WHERE source = ?`, g.Path)
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO refs (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range refs {
			if _, err := stmt.Exec(g.Path, target); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteGuide removes a guide, its FTS entry, findings, and outgoing refs.
func (db *DB) DeleteGuide(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM findings WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM refs WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM guides WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a guide, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM guides WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetGuide returns the stored row for a guide, or nil when not indexed.
func (db *DB) GetGuide(path string) (*GuideRow, error) {
	var g GuideRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, sections, broken_links, duplicate_keys, updated_at
		FROM guides WHERE path = ?
	`, path).Scan(&g.Path, &g.Title, &g.Checksum, &g.Sections, &g.BrokenLinks, &g.DuplicateKeys, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get guide: %w", err)
	}
	return &g, nil
}

// ListGuides returns paginated guide rows plus the total count.
// sort is one of "updated_at" (default), "title", "path".
func (db *DB) ListGuides(limit, offset int, sort string) ([]GuideRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	order := "updated_at DESC"
	switch sort {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "path":
		order = "path ASC"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM guides`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count guides: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, checksum, sections, broken_links, duplicate_keys, updated_at
		FROM guides ORDER BY `+order+` LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list guides: %w", err)
	}
	defer rows.Close()

	var out []GuideRow
	for rows.Next() {
		var g GuideRow
		if err := rows.Scan(&g.Path, &g.Title, &g.Checksum, &g.Sections, &g.BrokenLinks, &g.DuplicateKeys, &g.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// Findings returns the recorded validation findings for one guide.
func (db *DB) Findings(path string) ([]Finding, error) {
	return db.queryFindings(`SELECT path, kind, subject, detail FROM findings WHERE path = ? ORDER BY rowid`, path)
}

// AllFindings returns every recorded finding across the library.
func (db *DB) AllFindings() ([]Finding, error) {
	return db.queryFindings(`SELECT path, kind, subject, detail FROM findings ORDER BY path, rowid`)
}

func (db *DB) queryFindings(query string, args ...any) ([]Finding, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Path, &f.Kind, &f.Subject, &f.Detail); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Graph returns all guides as nodes and all cross-references as links.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	rows, err := db.conn.Query(`SELECT path, title FROM guides ORDER BY path`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	var nodes []GraphNode
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	linkRows, err := db.conn.Query(`SELECT source, target FROM refs ORDER BY source, target`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer linkRows.Close()

	var links []GraphLink
	for linkRows.Next() {
		var l GraphLink
		if err := linkRows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, linkRows.Err()
}

// Backlinks returns all guide paths that reference the given target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM refs WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllChecksums returns path -> checksum for every indexed guide.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM guides`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

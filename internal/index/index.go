package index

// GuideIndex defines the interface for guide indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type GuideIndex interface {
	UpsertGuide(g GuideRow, body string, refs []string, findings []Finding) error
	DeleteGuide(path string) error
	GetChecksum(path string) (string, error)
	GetGuide(path string) (*GuideRow, error)
	ListGuides(limit, offset int, sort string) ([]GuideRow, int, error)
	Findings(path string) ([]Finding, error)
	AllFindings() ([]Finding, error)
	Search(query string, limit int) ([]SearchResult, error)
	Graph() ([]GraphNode, []GraphLink, error)
	Backlinks(target string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies GuideIndex at compile time.
var _ GuideIndex = (*DB)(nil)

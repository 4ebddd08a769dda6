package score_session

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/samber/lo"
)

// ContentCatalog resolves lesson content. A session with a catalog rejects
// results for unknown words and measures lesson progress against the full
// lesson rather than the words seen so far.
type ContentCatalog interface {
	// WordIDs returns the IDs of every word under parentID, and false when
	// the parent is unknown.
	WordIDs(parentID string) ([]string, bool)
}

// StaticCatalog is an in-memory ContentCatalog built from a word list.
type StaticCatalog struct {
	words map[string][]string
}

var _ ContentCatalog = (*StaticCatalog)(nil)

// NewStaticCatalog indexes words by parent. Words without a parent and
// duplicate IDs are rejected.
func NewStaticCatalog(words []domain.Word) (*StaticCatalog, error) {
	for _, w := range words {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog word %q: %w", w.ID, err)
		}
		if w.ParentID == "" {
			return nil, fmt.Errorf("invalid catalog word %q: %w", w.ID, domain.ErrEmptyParentID)
		}
	}
	if dupes := lo.FindDuplicatesBy(words, func(w domain.Word) string { return w.ParentID + "\x00" + w.ID }); len(dupes) > 0 {
		return nil, fmt.Errorf("duplicate catalog word %q under %q", dupes[0].ID, dupes[0].ParentID)
	}

	grouped := lo.GroupBy(words, func(w domain.Word) string { return w.ParentID })
	index := lo.MapValues(grouped, func(ws []domain.Word, _ string) []string {
		return lo.Map(ws, func(w domain.Word, _ int) string { return w.ID })
	})
	return &StaticCatalog{words: index}, nil
}

// LoadCatalogFile reads a JSON array of words.
func LoadCatalogFile(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var words []domain.Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return NewStaticCatalog(words)
}

// WordIDs implements ContentCatalog.
func (c *StaticCatalog) WordIDs(parentID string) ([]string, bool) {
	ids, ok := c.words[parentID]
	if !ok {
		return nil, false
	}
	return slices.Clone(ids), true
}

// ParentCount returns the number of parents in the catalog.
func (c *StaticCatalog) ParentCount() int {
	return len(c.words)
}

// hasWord reports whether catalog lists wordID under parentID.
func hasWord(catalog ContentCatalog, parentID, wordID string) bool {
	ids, ok := catalog.WordIDs(parentID)
	return ok && slices.Contains(ids, wordID)
}

package pairing

import (
	"encoding/json"
	"slices"

	"github.com/samber/lo"
)

// WordSet is an ordered set of IDs with value semantics. Every mutating
// method returns a new set and leaves the receiver unchanged, so a set handed
// out in a snapshot can never be altered by later game play.
type WordSet struct {
	ids []string
}

// NewWordSet builds a set from ids, dropping duplicates and keeping the
// first occurrence order.
func NewWordSet(ids ...string) WordSet {
	return WordSet{ids: lo.Uniq(ids)}
}

// Contains reports whether id is in the set.
func (s WordSet) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Add returns a set that also contains id.
func (s WordSet) Add(id string) WordSet {
	if s.Contains(id) {
		return s
	}
	ids := make([]string, len(s.ids), len(s.ids)+1)
	copy(ids, s.ids)
	return WordSet{ids: append(ids, id)}
}

// Remove returns a set without id.
func (s WordSet) Remove(id string) WordSet {
	if !s.Contains(id) {
		return s
	}
	return WordSet{ids: lo.Without(s.ids, id)}
}

// Union returns the members of s followed by the members of other not
// already in s.
func (s WordSet) Union(other WordSet) WordSet {
	if other.Len() == 0 {
		return s
	}
	return WordSet{ids: lo.Uniq(slices.Concat(s.ids, other.ids))}
}

// Len returns the number of members.
func (s WordSet) Len() int {
	return len(s.ids)
}

// Slice returns a copy of the members in insertion order.
func (s WordSet) Slice() []string {
	return slices.Clone(s.ids)
}

// MarshalJSON encodes the set as a JSON array.
func (s WordSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

// UnmarshalJSON decodes a JSON array, dropping duplicates.
func (s *WordSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewWordSet(ids...)
	return nil
}

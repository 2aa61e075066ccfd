package scanner

import (
	"fmt"

	"dupfinder/types"
)

// DuplicateTracker maps the canonical original of every fingerprint seen at
// least twice during one scan to the ordinal of its group directory.
type DuplicateTracker struct {
	groups map[string]int
}

// NewDuplicateTracker returns an empty tracker
func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{groups: make(map[string]int)}
}

// Find returns the group ordinal registered for original
func (t *DuplicateTracker) Find(original string) (int, bool) {
	group, ok := t.groups[original]
	return group, ok
}

// Register records the group created for original. Each original may only be
// registered once per scan.
func (t *DuplicateTracker) Register(original string, group int) error {
	if existing, ok := t.groups[original]; ok {
		return fmt.Errorf("%s already belongs to group %d", original, existing)
	}
	t.groups[original] = group
	return nil
}

// Len returns the number of registered groups
func (t *DuplicateTracker) Len() int {
	return len(t.groups)
}

// Entries lists the known duplicates, in no particular order
func (t *DuplicateTracker) Entries() []types.KnownDuplicate {
	entries := make([]types.KnownDuplicate, 0, len(t.groups))
	for name, group := range t.groups {
		entries = append(entries, types.KnownDuplicate{Filename: name, Group: group})
	}
	return entries
}

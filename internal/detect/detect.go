// Package detect diffs a subtree scan against the set of entry ids a
// previous cycle recorded. Both functions are pure; the watcher owns
// every side effect around them.
package detect

import "github.com/DarmsTdiuM27/med-drive-bot/pkg/models"

// IDSet collects the distinct entry ids of a scan result.
func IDSet(entries []models.Entry) map[string]struct{} {
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		ids[e.ID] = struct{}{}
	}
	return ids
}

// NewEntries returns the scanned entries whose ids are absent from
// seen, in scan order. The inputs are never mutated, so running the
// detector twice over the same pair yields the same answer. An id the
// scan lists twice is reported once.
func NewEntries(entries []models.Entry, seen map[string]struct{}) []models.Entry {
	var fresh []models.Entry
	reported := make(map[string]struct{})
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		if _, ok := reported[e.ID]; ok {
			continue
		}
		reported[e.ID] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh
}

package scan

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

type fakeLister struct {
	mu    sync.Mutex
	items map[string][]models.Entry
	fail  map[string]error
	calls map[string]int
}

func newFakeLister(items map[string][]models.Entry) *fakeLister {
	return &fakeLister{
		items: items,
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeLister) List(_ context.Context, folderID string) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[folderID]++
	if err := f.fail[folderID]; err != nil {
		return nil, err
	}
	return f.items[folderID], nil
}

func (f *fakeLister) callCount(folderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[folderID]
}

func folder(id, name string) models.Entry {
	return models.Entry{ID: id, Name: name, MimeType: models.MimeFolder}
}

func file(id, name string) models.Entry {
	return models.Entry{ID: id, Name: name, MimeType: "application/pdf"}
}

func folderAlias(id, name, targetID string) models.Entry {
	return models.Entry{
		ID:       id,
		Name:     name,
		MimeType: models.MimeShortcut,
		Alias:    &models.AliasTarget{ID: targetID, MimeType: models.MimeFolder},
	}
}

func ids(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestScanner_FlattensDepthFirst(t *testing.T) {
	t.Parallel()

	f := newFakeLister(map[string][]models.Entry{
		"m17": {folder("w1", "Week 1"), file("syl", "syllabus.pdf")},
		"w1":  {file("lec", "lecture.pdf")},
	})

	got, err := New(f).Scan(context.Background(), "m17", 2)
	require.NoError(t, err)

	// Pre-order: the folder entry itself, then its contents, then the
	// remaining siblings.
	assert.Equal(t, []string{"w1", "lec", "syl"}, ids(got))
}

func TestScanner_DepthBound(t *testing.T) {
	t.Parallel()

	f := newFakeLister(map[string][]models.Entry{
		"top": {folder("d1", "level 1")},
		"d1":  {folder("d2", "level 2")},
		"d2":  {folder("d3", "level 3")},
		"d3":  {file("deep", "deep.pdf")},
	})

	got, err := New(f).Scan(context.Background(), "top", 2)
	require.NoError(t, err)

	// d3 is recorded as an entry of d2's listing but never descended
	// into: its own children stay invisible at this bound.
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids(got))
	assert.Zero(t, f.callCount("d3"))
}

func TestScanner_MaxDepthZeroListsOnlyChildren(t *testing.T) {
	t.Parallel()

	f := newFakeLister(map[string][]models.Entry{
		"top": {folder("d1", "level 1"), file("a", "a.pdf")},
		"d1":  {file("hidden", "hidden.pdf")},
	})

	got, err := New(f).Scan(context.Background(), "top", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"d1", "a"}, ids(got))
	assert.Zero(t, f.callCount("d1"))
}

func TestScanner_DescendsThroughAliasTargets(t *testing.T) {
	t.Parallel()

	f := newFakeLister(map[string][]models.Entry{
		"top":    {folderAlias("al", "Cardiology (link)", "target")},
		"target": {file("x", "x.pdf")},
	})

	got, err := New(f).Scan(context.Background(), "top", 2)
	require.NoError(t, err)

	// The alias entry itself is part of the result; traversal goes to
	// the target id, never the alias id.
	assert.Equal(t, []string{"al", "x"}, ids(got))
	assert.Equal(t, 1, f.callCount("target"))
	assert.Zero(t, f.callCount("al"))
}

func TestScanner_AliasCycleTerminatesAtBound(t *testing.T) {
	t.Parallel()

	// "a" contains an alias pointing back at the scan root.
	f := newFakeLister(map[string][]models.Entry{
		"top": {folder("a", "A")},
		"a":   {folderAlias("back", "loop", "top")},
	})

	got, err := New(f).Scan(context.Background(), "top", 3)
	require.NoError(t, err)

	// Depth bound 3: top(0) -> a(1) -> top(2) -> a(3), then the alias
	// at depth 3 is listed but not followed. Duplicate listings of a
	// true cycle are the documented cost of having no visited set.
	assert.Equal(t, []string{"a", "back", "a", "back"}, ids(got))
	assert.Equal(t, 2, f.callCount("top"))
	assert.Equal(t, 2, f.callCount("a"))
}

func TestScanner_ListingFailureAbortsScan(t *testing.T) {
	t.Parallel()

	f := newFakeLister(map[string][]models.Entry{
		"top": {folder("ok", "fine"), folder("bad", "broken")},
		"ok":  {file("x", "x.pdf")},
	})
	f.fail["bad"] = errors.New("listing unavailable")

	got, err := New(f).Scan(context.Background(), "top", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Nil(t, got, "a partial result must not escape a failed scan")
}

func TestScanner_EmptySubtree(t *testing.T) {
	t.Parallel()

	f := newFakeLister(map[string][]models.Entry{"top": nil})

	got, err := New(f).Scan(context.Background(), "top", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

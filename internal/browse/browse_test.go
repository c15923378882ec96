package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

type fakeLister struct {
	mu    sync.Mutex
	items map[string][]models.Entry
	err   error
	calls int
}

func (f *fakeLister) List(_ context.Context, folderID string) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items[folderID], nil
}

func (f *fakeLister) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeLister) set(folderID string, entries []models.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[folderID] = entries
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

func itemNames(v View) []string {
	names := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		names = append(names, it.Name)
	}
	return names
}

func TestNavigator_StartRendersRoot(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {file("f1", "notes.pdf"), folder("a", "M3 Cardiology"), folder("b", "Archive")},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")

	v, err := nav.Start(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "root", v.FolderID)
	assert.Equal(t, RootPathName, v.Path)
	assert.False(t, v.CanBack)
	assert.False(t, v.HasPrev)
	assert.False(t, v.HasNext)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, []string{"M3 Cardiology", "Archive", "notes.pdf"}, itemNames(v))

	for _, it := range v.Items {
		if it.Kind.IsFolder() {
			assert.Empty(t, it.URL)
		} else {
			assert.NotEmpty(t, it.URL)
		}
	}
}

func TestNavigator_OpenDescends(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {folder("a", "M3 Cardiology")},
		"a":    {file("f1", "week1.pdf")},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")

	_, err := nav.Start(context.Background(), s)
	require.NoError(t, err)

	v, err := nav.Open(context.Background(), s, "a")
	require.NoError(t, err)

	assert.Equal(t, "a", v.FolderID)
	assert.Equal(t, "Home › M3 Cardiology", v.Path)
	assert.True(t, v.CanBack)
	assert.Zero(t, v.Offset)
	assert.Equal(t, []string{"week1.pdf"}, itemNames(v))
	assert.Equal(t, 2, s.Depth())
}

func TestNavigator_OpenUnknownEntry(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {folder("a", "M3 Cardiology")},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")

	_, err := nav.Start(context.Background(), s)
	require.NoError(t, err)

	_, err = nav.Open(context.Background(), s, "nope")
	require.ErrorIs(t, err, ErrUnknownEntry)
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "root", s.Current().FolderID)
}

func TestNavigator_OpenResolvesAlias(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {folderAlias("al", "Cardiology (link)", "m3")},
		"m3":   {file("f1", "week1.pdf")},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")

	_, err := nav.Start(context.Background(), s)
	require.NoError(t, err)

	// The alias's own id is the UI handle; opening it lands on the
	// target folder under the alias's display name.
	v, err := nav.Open(context.Background(), s, "al")
	require.NoError(t, err)

	assert.Equal(t, "m3", v.FolderID)
	assert.Equal(t, "Home › Cardiology (link)", v.Path)
	assert.Equal(t, []string{"week1.pdf"}, itemNames(v))
}

func TestNavigator_BackAtRootStays(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {file("f1", "notes.pdf")},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")

	start, err := nav.Start(context.Background(), s)
	require.NoError(t, err)

	v, err := nav.Back(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, start, v)
	assert.Equal(t, 1, s.Depth())
}

func TestNavigator_RoundTripRestoresRoot(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {folder("a", "M1 Anatomy"), file("f0", "syllabus.pdf")},
		"a":    {folder("b", "Week 1")},
		"b":    {file("f1", "lecture.pdf")},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")
	ctx := context.Background()

	start, err := nav.Start(ctx, s)
	require.NoError(t, err)

	_, err = nav.Open(ctx, s, "a")
	require.NoError(t, err)
	_, err = nav.Open(ctx, s, "b")
	require.NoError(t, err)

	_, err = nav.Back(ctx, s)
	require.NoError(t, err)
	v, err := nav.Back(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, start, v)
	assert.Equal(t, 1, s.Depth())
}

func TestNavigator_HomeFromAnyDepth(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {folder("a", "M1 Anatomy")},
		"a":    {folder("b", "Week 1")},
		"b":    {},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")
	ctx := context.Background()

	_, err := nav.Start(ctx, s)
	require.NoError(t, err)
	_, err = nav.Open(ctx, s, "a")
	require.NoError(t, err)
	_, err = nav.Open(ctx, s, "b")
	require.NoError(t, err)

	v, err := nav.Home(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, "root", v.FolderID)
	assert.Equal(t, RootPathName, v.Path)
	assert.Equal(t, 1, s.Depth())
}

func manyFiles(n int) []models.Entry {
	entries := make([]models.Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, file(fmt.Sprintf("f%02d", i), fmt.Sprintf("file %02d", i)))
	}
	return entries
}

func TestNavigator_PaginationExactPage(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{"root": manyFiles(25)}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")

	v, err := nav.Start(context.Background(), s)
	require.NoError(t, err)

	assert.Len(t, v.Items, 25)
	assert.False(t, v.HasNext)
	assert.False(t, v.HasPrev)
}

func TestNavigator_PaginationAdvances(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{"root": manyFiles(26)}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")
	ctx := context.Background()

	v, err := nav.Start(ctx, s)
	require.NoError(t, err)
	assert.True(t, v.HasNext)

	v, err = nav.Next(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 25, v.Offset)
	assert.Len(t, v.Items, 1)
	assert.Equal(t, "file 25", v.Items[0].Name)
	assert.True(t, v.HasPrev)
	assert.False(t, v.HasNext)

	// Next on the last page stays put.
	v, err = nav.Next(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 25, v.Offset)

	v, err = nav.Prev(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, v.Offset)
	assert.False(t, v.HasPrev)

	// Prev on the first page stays put.
	v, err = nav.Prev(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, v.Offset)
}

func TestNavigator_OffsetClampsWhenListingShrinks(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{"root": manyFiles(26)}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")
	ctx := context.Background()

	_, err := nav.Start(ctx, s)
	require.NoError(t, err)
	_, err = nav.Next(ctx, s)
	require.NoError(t, err)
	require.Equal(t, 25, s.Offset())

	f.set("root", manyFiles(5))

	v, err := nav.Refresh(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, v.Offset)
	assert.Equal(t, 5, v.Total)
	assert.Len(t, v.Items, 5)
}

func TestNavigator_FailedActionLeavesSessionUnchanged(t *testing.T) {
	t.Parallel()

	f := &fakeLister{items: map[string][]models.Entry{
		"root": {folder("a", "M1 Anatomy")},
		"a":    {},
	}}
	nav := NewNavigator(f, "root", 25)
	s := NewSession("root")
	ctx := context.Background()

	_, err := nav.Start(ctx, s)
	require.NoError(t, err)

	f.setErr(errors.New("listing unavailable"))
	_, err = nav.Open(ctx, s, "a")
	require.Error(t, err)
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "root", s.Current().FolderID)

	// The next action succeeds once the backend recovers.
	f.setErr(nil)
	v, err := nav.Open(ctx, s, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", v.FolderID)
	assert.Equal(t, 2, s.Depth())
}

func TestSessions_GetCreatesOnce(t *testing.T) {
	t.Parallel()

	m := NewSessions("root")

	a := m.Get(7)
	b := m.Get(7)
	c := m.Get(8)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "root", a.Current().FolderID)
}

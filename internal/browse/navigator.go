package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/remote"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/tree"
)

// ErrUnknownEntry is returned when Open names an id the current view
// never rendered (stale keyboard, forged callback data).
var ErrUnknownEntry = errors.New("unknown entry id")

// Item is one row of a rendered page.
type Item struct {
	ID   string // the entry's own id, the UI handle
	Name string
	Icon string
	Kind models.Kind
	URL  string // set for file-like items
}

// View is what the transport renders after an action.
type View struct {
	FolderID string
	Path     string
	Items    []Item // current page only
	Offset   int
	PageSize int
	Total    int
	HasPrev  bool
	HasNext  bool
	CanBack  bool
}

// Navigator applies navigation actions to sessions. Every action
// re-renders from a fresh listing (the cache absorbs the cost) and
// commits the session only after the render succeeded, so a failed
// action leaves the session exactly where it was.
type Navigator struct {
	lister   remote.Lister
	rootID   string
	pageSize int
}

// NewNavigator builds a navigator over the given lister.
func NewNavigator(lister remote.Lister, rootID string, pageSize int) *Navigator {
	return &Navigator{lister: lister, rootID: rootID, pageSize: pageSize}
}

// Start resets the session to the root folder.
func (n *Navigator) Start(ctx context.Context, s *Session) (View, error) {
	return n.commit(ctx, s, []Crumb{{FolderID: n.rootID, Path: RootPathName}}, 0)
}

// Open descends into a folder the previous view rendered. Aliases were
// resolved at render time, so the pushed frame already carries the
// target folder id under the alias's display name.
func (n *Navigator) Open(ctx context.Context, s *Session, entryID string) (View, error) {
	t, ok := s.index[entryID]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownEntry, entryID)
	}
	cur := s.Current()
	stack := append(copyStack(s.stack), Crumb{
		FolderID: t.id,
		Path:     tree.JoinPath(cur.Path, t.name),
	})
	return n.commit(ctx, s, stack, 0)
}

// Back pops one level. At the root it just re-renders in place.
func (n *Navigator) Back(ctx context.Context, s *Session) (View, error) {
	stack := copyStack(s.stack)
	if len(stack) > 1 {
		stack = stack[:len(stack)-1]
	}
	return n.commit(ctx, s, stack, 0)
}

// Home jumps straight back to the root frame.
func (n *Navigator) Home(ctx context.Context, s *Session) (View, error) {
	return n.commit(ctx, s, []Crumb{{FolderID: n.rootID, Path: RootPathName}}, 0)
}

// Next advances one page; on the last page it re-renders unchanged.
func (n *Navigator) Next(ctx context.Context, s *Session) (View, error) {
	return n.commit(ctx, s, copyStack(s.stack), s.offset+n.pageSize)
}

// Prev goes back one page; on the first page it re-renders unchanged.
func (n *Navigator) Prev(ctx context.Context, s *Session) (View, error) {
	offset := s.offset - n.pageSize
	if offset < 0 {
		offset = 0
	}
	return n.commit(ctx, s, copyStack(s.stack), offset)
}

// Refresh re-renders the current position.
func (n *Navigator) Refresh(ctx context.Context, s *Session) (View, error) {
	return n.commit(ctx, s, copyStack(s.stack), s.offset)
}

// commit renders the candidate position and, only on success, makes it
// the session's state.
func (n *Navigator) commit(ctx context.Context, s *Session, stack []Crumb, offset int) (View, error) {
	cur := stack[len(stack)-1]

	listing, err := n.lister.List(ctx, cur.FolderID)
	if err != nil {
		return View{}, err
	}

	arranged := tree.Arrange(listing, cur.FolderID == n.rootID)
	total := len(arranged)

	// Listings can shrink between renders; a stale offset clamps to
	// the last page instead of showing an empty one.
	if offset >= total {
		offset = lastPageStart(total, n.pageSize)
	}

	index := make(map[string]target)
	for _, e := range arranged {
		if tree.Classify(e).IsFolder() {
			id, name := tree.Resolve(e)
			index[e.ID] = target{id: id, name: name}
		}
	}

	end := offset + n.pageSize
	if end > total {
		end = total
	}

	view := View{
		FolderID: cur.FolderID,
		Path:     cur.Path,
		Items:    make([]Item, 0, end-offset),
		Offset:   offset,
		PageSize: n.pageSize,
		Total:    total,
		HasPrev:  offset > 0,
		HasNext:  offset+n.pageSize < total,
		CanBack:  len(stack) > 1,
	}
	for _, e := range arranged[offset:end] {
		k := tree.Classify(e)
		item := Item{ID: e.ID, Name: e.Name, Icon: tree.EntryIcon(e), Kind: k}
		if !k.IsFolder() {
			item.URL = tree.FileLink(e)
		}
		view.Items = append(view.Items, item)
	}

	s.stack = stack
	s.offset = offset
	s.index = index
	return view, nil
}

func copyStack(stack []Crumb) []Crumb {
	return append([]Crumb(nil), stack...)
}

func lastPageStart(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return ((total - 1) / pageSize) * pageSize
}

// Package browse implements the per-chat navigation state machine:
// a breadcrumb stack over the folder tree, an offset pager, and the
// index that maps rendered entry ids to their open targets.
package browse

// RootPathName labels the root frame of every breadcrumb trail.
const RootPathName = "Home"

// Crumb is one level of the navigation stack.
type Crumb struct {
	FolderID string
	Path     string // full display path, e.g. "Home › M17 Neurology › Week 1"
}

// target pairs the id traversal uses with the name display uses.
type target struct {
	id   string
	name string
}

// Session holds one chat's browsing position. The root frame is never
// popped. A session is mutated by one logical action at a time; the
// update loop serializes actions per chat.
type Session struct {
	stack  []Crumb
	offset int
	index  map[string]target // entry id -> open target, rebuilt on each render
}

// NewSession returns a session positioned at the root folder.
func NewSession(rootID string) *Session {
	return &Session{stack: []Crumb{{FolderID: rootID, Path: RootPathName}}}
}

// Current returns the frame the session is looking at.
func (s *Session) Current() Crumb {
	return s.stack[len(s.stack)-1]
}

// Depth returns the stack depth; the root frame counts as 1.
func (s *Session) Depth() int {
	return len(s.stack)
}

// Offset returns the pager position within the current folder.
func (s *Session) Offset() int {
	return s.offset
}

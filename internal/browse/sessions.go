package browse

import (
	"sync"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
)

// Sessions holds one Session per chat. Sessions are created on first
// use and live for the process lifetime.
type Sessions struct {
	rootID string

	mu    sync.RWMutex
	items map[int64]*Session
}

func NewSessions(rootID string) *Sessions {
	return &Sessions{rootID: rootID, items: make(map[int64]*Session)}
}

// Get returns the session for a chat, creating it at the root if the
// chat has never been seen.
func (m *Sessions) Get(chatID int64) *Session {
	m.mu.RLock()
	s, ok := m.items[chatID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.items[chatID]; ok {
		return s
	}
	s = NewSession(m.rootID)
	m.items[chatID] = s
	metrics.SetActiveSessions(len(m.items))
	return s
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

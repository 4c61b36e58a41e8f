// Package session holds the authenticated-session context passed into every
// core operation: who the caller is, which role they act under, and the
// one-shot flag guarding the per-session bootstrap sync.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sales_desk/internal/users"
)

// Session is the explicit per-login context. It is created on a successful
// credential check and destroyed on logout.
type Session struct {
	Token     string     `json:"token"`
	Username  string     `json:"username"`
	Role      users.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`

	synced atomic.Bool
}

// BeginSync claims the once-per-session sync slot. Only the first caller
// gets true; concurrent logins racing on separate sessions are an accepted
// duplication risk, not a corruption risk.
func (s *Session) BeginSync() bool {
	return s.synced.CompareAndSwap(false, true)
}

// Manager tracks live sessions by token.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Create registers a new session for the given identity and role.
func (m *Manager) Create(username string, role users.Role) *Session {
	s := &Session{
		Token:     uuid.NewString(),
		Username:  users.NormalizeUsername(username),
		Role:      role,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Get resolves a token to its live session.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

// Destroy tears a session down. Unknown tokens are a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

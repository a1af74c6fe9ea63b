// Package session holds per-front-end conversation state. Sessions are
// created on first contact, reset on an explicit "start over", and never
// persisted.
package session

import (
	"sync"

	"github.com/tokenizelocal/tokenizelocal/internal/domain"
)

// Role is the mode a session operates in.
type Role string

const (
	RoleNone    Role = ""
	RoleUser    Role = "user"
	RoleCompany Role = "company"
)

// Awaiting marks which multi-step input a session is waiting for.
type Awaiting string

const (
	AwaitingNone        Awaiting = ""
	AwaitingRegister    Awaiting = "register"
	AwaitingLogin       Awaiting = "login"
	AwaitingTaxID       Awaiting = "tax_id"
	AwaitingTokenAmount Awaiting = "token_amount"
	AwaitingPurchase    Awaiting = "purchase"
)

// Session is the explicit conversation state for one front-end identity.
type Session struct {
	ID       string
	Role     Role
	Email    string
	Awaiting Awaiting
	// PendingCompany carries the verified company between the tax-id prompt
	// and the amount prompt of the issuance flow
	PendingCompany *domain.Business
}

// LoggedIn reports whether a user identity is attached
func (s *Session) LoggedIn() bool {
	return s.Email != ""
}

// ClearPrompt drops any pending multi-step input
func (s *Session) ClearPrompt() {
	s.Awaiting = AwaitingNone
	s.PendingCompany = nil
}

// Reset restores the session to its first-contact state, keeping the ID
func (s *Session) Reset() {
	s.Role = RoleNone
	s.Email = ""
	s.ClearPrompt()
}

// Manager hands out sessions keyed by a stable identity (chat user id or
// console session token).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it on first contact
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		s = &Session{ID: id}
		m.sessions[id] = s
	}
	return s
}

// Reset restores the session for id to its first-contact state
func (m *Manager) Reset(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Reset()
	}
}

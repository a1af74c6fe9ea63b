package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/session"
)

func TestGetCreatesOnFirstContact(t *testing.T) {
	mgr := session.NewManager()

	s := mgr.Get("42")
	require.NotNil(t, s)
	assert.Equal(t, "42", s.ID)
	assert.Equal(t, session.RoleNone, s.Role)
	assert.False(t, s.LoggedIn())

	// Same identity returns the same session
	s.Role = session.RoleUser
	again := mgr.Get("42")
	assert.Same(t, s, again)

	// Different identities are isolated
	other := mgr.Get("43")
	assert.Equal(t, session.RoleNone, other.Role)
}

func TestReset(t *testing.T) {
	mgr := session.NewManager()

	s := mgr.Get("42")
	s.Role = session.RoleUser
	s.Email = "ivan@example.com"
	s.Awaiting = session.AwaitingPurchase
	s.PendingCompany = &domain.Business{TaxID: "7707083893", Name: "Acme LLC"}

	mgr.Reset("42")

	assert.Equal(t, session.RoleNone, s.Role)
	assert.False(t, s.LoggedIn())
	assert.Equal(t, session.AwaitingNone, s.Awaiting)
	assert.Nil(t, s.PendingCompany)
	assert.Equal(t, "42", s.ID)

	// Resetting an unknown id is a no-op
	mgr.Reset("unknown")
}

func TestClearPromptKeepsIdentity(t *testing.T) {
	s := &session.Session{
		ID:             "42",
		Role:           session.RoleCompany,
		Email:          "ivan@example.com",
		Awaiting:       session.AwaitingTokenAmount,
		PendingCompany: &domain.Business{TaxID: "7707083893"},
	}

	s.ClearPrompt()

	assert.Equal(t, session.AwaitingNone, s.Awaiting)
	assert.Nil(t, s.PendingCompany)
	assert.Equal(t, session.RoleCompany, s.Role)
	assert.True(t, s.LoggedIn())
}

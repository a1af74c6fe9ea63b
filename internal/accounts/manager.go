// Package accounts handles end-user registration and credential checks.
package accounts

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/logger"
	"github.com/tokenizelocal/tokenizelocal/internal/store"
	"github.com/tokenizelocal/tokenizelocal/internal/store/schema"
)

// CredentialVerifier checks a secret against the stored one for an identity.
// The default implementation compares plaintext; a hashed comparator can be
// swapped in without touching the ledger engine.
type CredentialVerifier interface {
	Verify(ctx context.Context, identity, secret string) (bool, error)
}

type plaintextVerifier struct {
	store store.Store
}

// NewPlaintextVerifier creates the default equality-comparison verifier
func NewPlaintextVerifier(st store.Store) CredentialVerifier {
	return &plaintextVerifier{store: st}
}

func (v *plaintextVerifier) Verify(ctx context.Context, identity, secret string) (bool, error) {
	user, err := v.store.GetUserByEmail(ctx, identity)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.Password == secret, nil
}

// Manager registers and authenticates users.
type Manager struct {
	store    store.Store
	verifier CredentialVerifier
}

// NewManager creates an accounts manager. A nil verifier falls back to the
// plaintext comparator.
func NewManager(st store.Store, verifier CredentialVerifier) *Manager {
	if verifier == nil {
		verifier = NewPlaintextVerifier(st)
	}
	return &Manager{store: st, verifier: verifier}
}

// Register creates a new user. The identity must carry an "@" marker; a
// duplicate identity fails with ErrAlreadyExists and leaves the existing row
// untouched.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if !strings.Contains(email, "@") {
		return domain.ErrInvalidIdentity
	}
	err := m.store.Transact(ctx, func(tx store.Store) error {
		existing, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyExists
		}
		return tx.CreateUser(ctx, &schema.User{
			Name:     name,
			Email:    email,
			Password: password,
		})
	})
	if err != nil {
		return err
	}
	logger.Info("user registered", zap.String("email", email))
	return nil
}

// Authenticate checks the identity and secret through the configured verifier
func (m *Manager) Authenticate(ctx context.Context, email, password string) (bool, error) {
	return m.verifier.Verify(ctx, email, password)
}

// FindByEmail returns the user's public profile, nil when unknown
func (m *Manager) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := m.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &domain.User{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

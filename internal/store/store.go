package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/store/schema"
)

// OwnerDividendEvent is one past distribution joined with the business name,
// scoped to businesses the owner holds tokens in.
type OwnerDividendEvent struct {
	BusinessTaxID string
	BusinessName  string
	DistributedAt time.Time
	DividendPool  decimal.Decimal
	TokenPrice    decimal.Decimal
}

// Store defines the interface for ledger persistence. Every method runs in
// its own transaction; Transact groups several calls into one all-or-nothing
// scope for the multi-table flows (purchase, register-then-issue).
//
// The store enforces uniqueness constraints only; business rules (supply
// non-negativity, payout math) live in the ledger service.
type Store interface {
	// Transact runs fn against a transaction-scoped store. Any error rolls
	// the whole scope back. Scopes may nest; inner scopes become savepoints.
	Transact(ctx context.Context, fn func(Store) error) error

	// UpsertBusiness inserts a business or overwrites its name (idempotent upsert)
	UpsertBusiness(ctx context.Context, taxID, name string) error
	// GetBusiness retrieves a business by tax id, nil when absent
	GetBusiness(ctx context.Context, taxID string) (*schema.Business, error)

	// GetIssuance retrieves the issuance row for a business, nil when absent
	GetIssuance(ctx context.Context, taxID string) (*schema.Issuance, error)
	// SaveIssuance creates or updates an issuance row
	SaveIssuance(ctx context.Context, issuance *schema.Issuance) error
	// GetIssuanceStats retrieves issuance joined with the business name, nil when absent
	GetIssuanceStats(ctx context.Context, taxID string) (*domain.IssuanceStats, error)
	// ListIssuances returns every business in insertion order, left-joined
	// with its issuance; businesses that never issued have a nil Total
	ListIssuances(ctx context.Context) ([]domain.IssuanceSummary, error)

	// GetHolding retrieves one (owner, business) balance row, nil when absent
	GetHolding(ctx context.Context, ownerEmail, taxID string) (*schema.Holding, error)
	// SaveHolding creates or updates a holding row
	SaveHolding(ctx context.Context, holding *schema.Holding) error
	// ListHoldingsByOwner returns the owner's balances joined with business names
	ListHoldingsByOwner(ctx context.Context, ownerEmail string) ([]domain.HoldingSummary, error)
	// ListHoldingsByBusiness returns every holding on one business
	ListHoldingsByBusiness(ctx context.Context, taxID string) ([]schema.Holding, error)

	// CreateDividendEvent appends one distribution record (never updated)
	CreateDividendEvent(ctx context.Context, event *schema.DividendEvent) error
	// ListDividendEventsByOwner returns the most recent distributions of
	// businesses the owner holds, newest first
	ListDividendEventsByOwner(ctx context.Context, ownerEmail string, limit int) ([]OwnerDividendEvent, error)

	// CreateUser inserts a new user row
	CreateUser(ctx context.Context, user *schema.User) error
	// GetUserByEmail retrieves a user by email, nil when absent
	GetUserByEmail(ctx context.Context, email string) (*schema.User, error)
}

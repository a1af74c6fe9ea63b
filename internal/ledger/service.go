// Package ledger implements the invariant-preserving accounting engine over
// businesses, token issuance, user holdings, and dividend distribution.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tokenizelocal/tokenizelocal/internal/adapter"
	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/logger"
	"github.com/tokenizelocal/tokenizelocal/internal/store"
	"github.com/tokenizelocal/tokenizelocal/internal/store/schema"
)

// DefaultDividendPercentage is the share of revenue distributed to holders
// when no percentage is configured.
var DefaultDividendPercentage = decimal.NewFromFloat(0.10)

// Service is the ledger accounting engine. All mutations go through the
// shared store; multi-table flows run in a single transaction.
type Service struct {
	store store.Store
	clock adapter.Clock
}

// NewService creates a ledger service over the given store
func NewService(st store.Store, clock adapter.Clock) *Service {
	return &Service{store: st, clock: clock}
}

// RegisterOrUpdateBusiness registers a company or overwrites its display name.
// The caller validates the tax id format before reaching this point.
func (s *Service) RegisterOrUpdateBusiness(ctx context.Context, taxID, name string) error {
	if err := s.store.UpsertBusiness(ctx, taxID, name); err != nil {
		return err
	}
	logger.Info("business registered", zap.String("tax_id", taxID), zap.String("name", name))
	return nil
}

// AdjustIssuance mints (positive delta) or deducts (negative delta) tokens
// from a business's outstanding supply. A zero delta is a no-op that touches
// neither the row nor its timestamp.
func (s *Service) AdjustIssuance(ctx context.Context, taxID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	return s.store.Transact(ctx, func(tx store.Store) error {
		return s.adjustIssuance(ctx, tx, taxID, delta)
	})
}

// adjustIssuance applies the supply rules inside an existing transaction scope.
func (s *Service) adjustIssuance(ctx context.Context, tx store.Store, taxID string, delta decimal.Decimal) error {
	issuance, err := tx.GetIssuance(ctx, taxID)
	if err != nil {
		return err
	}

	if issuance == nil {
		if delta.IsNegative() {
			return domain.ErrInvalidOperation
		}
		issuance = &schema.Issuance{
			BusinessTaxID: taxID,
			Total:         delta,
			ModifiedAt:    s.clock.Now(),
		}
		if err := tx.SaveIssuance(ctx, issuance); err != nil {
			return err
		}
		logger.Info("issuance created",
			zap.String("tax_id", taxID),
			zap.String("total", delta.String()))
		return nil
	}

	newTotal := issuance.Total.Add(delta)
	if newTotal.IsNegative() {
		return &domain.InsufficientSupplyError{TaxID: taxID, Remaining: issuance.Total}
	}
	issuance.Total = newTotal
	issuance.ModifiedAt = s.clock.Now()
	if err := tx.SaveIssuance(ctx, issuance); err != nil {
		return err
	}
	logger.Info("issuance updated",
		zap.String("tax_id", taxID),
		zap.String("delta", delta.String()),
		zap.String("total", newTotal.String()))
	return nil
}

// IssueTokens registers (or renames) the business and mints tokens for it in
// one atomic transaction.
func (s *Service) IssueTokens(ctx context.Context, taxID, name string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("issue amount must not be negative")
	}
	return s.store.Transact(ctx, func(tx store.Store) error {
		if err := tx.UpsertBusiness(ctx, taxID, name); err != nil {
			return err
		}
		if amount.IsZero() {
			return nil
		}
		return s.adjustIssuance(ctx, tx, taxID, amount)
	})
}

// Issuance returns the current supply stats of one business.
func (s *Service) Issuance(ctx context.Context, taxID string) (*domain.IssuanceStats, error) {
	stats, err := s.store.GetIssuanceStats(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, domain.ErrNotFound
	}
	return stats, nil
}

// ListIssuances returns every registered business exactly once, in insertion
// order, with a nil total for businesses that never issued tokens. Front ends
// rely on this order for their numbered menus.
func (s *Service) ListIssuances(ctx context.Context) ([]domain.IssuanceSummary, error) {
	return s.store.ListIssuances(ctx)
}

// Credit increases a user's balance in one business, creating the holding row
// lazily on first credit. A zero amount is a no-op.
func (s *Service) Credit(ctx context.Context, ownerEmail, taxID string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	return s.store.Transact(ctx, func(tx store.Store) error {
		return s.creditHolding(ctx, tx, ownerEmail, taxID, amount)
	})
}

func (s *Service) creditHolding(ctx context.Context, tx store.Store, ownerEmail, taxID string, amount decimal.Decimal) error {
	holding, err := tx.GetHolding(ctx, ownerEmail, taxID)
	if err != nil {
		return err
	}

	if holding == nil {
		if amount.IsNegative() {
			return domain.ErrNegativeBalance
		}
		holding = &schema.Holding{
			OwnerEmail:    ownerEmail,
			BusinessTaxID: taxID,
			Balance:       amount,
		}
		if err := tx.SaveHolding(ctx, holding); err != nil {
			return err
		}
		logger.Info("holding created",
			zap.String("owner", ownerEmail),
			zap.String("tax_id", taxID),
			zap.String("balance", amount.String()))
		return nil
	}

	newBalance := holding.Balance.Add(amount)
	if newBalance.IsNegative() {
		return domain.ErrNegativeBalance
	}
	holding.Balance = newBalance
	if err := tx.SaveHolding(ctx, holding); err != nil {
		return err
	}
	logger.Info("holding updated",
		zap.String("owner", ownerEmail),
		zap.String("tax_id", taxID),
		zap.String("balance", newBalance.String()))
	return nil
}

// Holdings returns the user's balances joined with business names.
func (s *Service) Holdings(ctx context.Context, ownerEmail string) ([]domain.HoldingSummary, error) {
	return s.store.ListHoldingsByOwner(ctx, ownerEmail)
}

// Purchase moves tokens from a business's outstanding supply into a user's
// holding. Deduction and credit happen in one transaction: if either side
// fails, neither is committed, so supply plus holdings stay conserved.
func (s *Service) Purchase(ctx context.Context, ownerEmail, taxID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("purchase amount must be positive")
	}
	err := s.store.Transact(ctx, func(tx store.Store) error {
		if err := s.adjustIssuance(ctx, tx, taxID, amount.Neg()); err != nil {
			return err
		}
		return s.creditHolding(ctx, tx, ownerEmail, taxID, amount)
	})
	if err != nil {
		return err
	}
	logger.Info("tokens purchased",
		zap.String("owner", ownerEmail),
		zap.String("tax_id", taxID),
		zap.String("amount", amount.String()))
	return nil
}

// DistributeDividends computes pro-rata payouts from a revenue figure and
// appends one distribution event. Per-holder payouts are computed and
// reported only; no currency balance is ever credited. A zero percentage
// falls back to DefaultDividendPercentage.
func (s *Service) DistributeDividends(ctx context.Context, taxID string, revenue, percentage decimal.Decimal) (*domain.DividendReport, error) {
	if percentage.IsZero() {
		percentage = DefaultDividendPercentage
	}

	var report *domain.DividendReport
	err := s.store.Transact(ctx, func(tx store.Store) error {
		issuance, err := tx.GetIssuance(ctx, taxID)
		if err != nil {
			return err
		}
		if issuance == nil || !issuance.Total.IsPositive() {
			return domain.ErrNoTokensIssued
		}

		pool := revenue.Mul(percentage)
		price := pool.Div(issuance.Total)

		holdings, err := tx.ListHoldingsByBusiness(ctx, taxID)
		if err != nil {
			return err
		}

		var payouts []domain.HolderPayout
		for _, holding := range holdings {
			if !holding.Balance.IsPositive() {
				continue
			}
			payout := holding.Balance.Mul(pool).Div(issuance.Total)
			payouts = append(payouts, domain.HolderPayout{
				OwnerEmail: holding.OwnerEmail,
				Balance:    holding.Balance,
				Payout:     payout,
			})
			logger.Info("dividend payout",
				zap.String("owner", holding.OwnerEmail),
				zap.String("tax_id", taxID),
				zap.String("balance", holding.Balance.String()),
				zap.String("payout", payout.String()))
		}

		event := &schema.DividendEvent{
			BusinessTaxID: taxID,
			DistributedAt: s.clock.Now(),
			TotalRevenue:  revenue,
			DividendPool:  pool,
			TokenPrice:    price,
		}
		if err := tx.CreateDividendEvent(ctx, event); err != nil {
			return err
		}

		report = &domain.DividendReport{
			TaxID:         taxID,
			TotalRevenue:  revenue,
			DividendPool:  pool,
			TokenPrice:    price,
			DistributedAt: event.DistributedAt,
			Payouts:       payouts,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("dividends distributed",
		zap.String("tax_id", taxID),
		zap.String("pool", report.DividendPool.String()),
		zap.String("token_price", report.TokenPrice.String()))
	return report, nil
}

// HolderDividends returns the most recent distributions of businesses the
// owner holds tokens in. Each payout is recomputed from the holder's CURRENT
// balance and the CURRENT total issuance, so historical figures drift when
// balances change after the event.
func (s *Service) HolderDividends(ctx context.Context, ownerEmail string, limit int) ([]domain.DividendRecord, error) {
	events, err := s.store.ListDividendEventsByOwner(ctx, ownerEmail, limit)
	if err != nil {
		return nil, err
	}

	records := make([]domain.DividendRecord, 0, len(events))
	for _, event := range events {
		holding, err := s.store.GetHolding(ctx, ownerEmail, event.BusinessTaxID)
		if err != nil {
			return nil, err
		}
		if holding == nil || !holding.Balance.IsPositive() {
			continue
		}
		issuance, err := s.store.GetIssuance(ctx, event.BusinessTaxID)
		if err != nil {
			return nil, err
		}
		if issuance == nil || !issuance.Total.IsPositive() {
			continue
		}
		payout := holding.Balance.Mul(event.DividendPool).Div(issuance.Total)
		records = append(records, domain.DividendRecord{
			TaxID:         event.BusinessTaxID,
			Name:          event.BusinessName,
			DistributedAt: event.DistributedAt,
			DividendPool:  event.DividendPool,
			Balance:       holding.Balance,
			Payout:        payout,
		})
	}
	return records, nil
}

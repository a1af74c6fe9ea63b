package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Business is a registered company, keyed by its tax identifier (INN).
type Business struct {
	TaxID string
	Name  string
}

// CompanyInfo is the projection of a company-registry lookup used by the
// issuance flow. Revenue is the last reported yearly revenue.
type CompanyInfo struct {
	Name             string
	ShortName        string
	Status           string
	OGRN             string
	KPP              string
	RegistrationDate string
	Address          string
	OKVED            string
	Revenue          decimal.Decimal
}

// IssuanceStats describes the current outstanding token supply of one business.
type IssuanceStats struct {
	TaxID      string
	Name       string
	Total      decimal.Decimal
	ModifiedAt time.Time
}

// IssuanceSummary is one row of the companies listing. Businesses that never
// issued tokens appear with a nil Total and nil ModifiedAt.
type IssuanceSummary struct {
	TaxID      string
	Name       string
	Total      *decimal.Decimal
	ModifiedAt *time.Time
}

// Available returns the listed supply, treating a missing issuance row as zero.
func (s IssuanceSummary) Available() decimal.Decimal {
	if s.Total == nil {
		return decimal.Zero
	}
	return *s.Total
}

// HoldingSummary is one user's token balance in one business.
type HoldingSummary struct {
	TaxID   string
	Name    string
	Balance decimal.Decimal
}

// HolderPayout is the computed pro-rata share of one holder in a distribution.
// Payouts are reported, never credited to a wallet.
type HolderPayout struct {
	OwnerEmail string
	Balance    decimal.Decimal
	Payout     decimal.Decimal
}

// DividendReport summarizes one dividend distribution.
type DividendReport struct {
	TaxID         string
	TotalRevenue  decimal.Decimal
	DividendPool  decimal.Decimal
	TokenPrice    decimal.Decimal
	DistributedAt time.Time
	Payouts       []HolderPayout
}

// DividendRecord is a holder-facing view of a past distribution. The payout is
// recomputed from the holder's current balance and the current total issuance,
// so it drifts when balances change after the event.
type DividendRecord struct {
	TaxID         string
	Name          string
	DistributedAt time.Time
	DividendPool  decimal.Decimal
	Balance       decimal.Decimal
	Payout        decimal.Decimal
}

// User is a registered end user. The password never leaves the store layer.
type User struct {
	ID    int64
	Name  string
	Email string
}

// IsValidTaxID reports whether s is a well-formed tax identifier:
// exactly 10 or 12 ASCII digits.
func IsValidTaxID(s string) bool {
	if len(s) != 10 && len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Issuance represents the issuances table - the current outstanding token
// supply per business. One row per business, overwritten in place on every
// mint or deduction; this is a snapshot, not an event log.
type Issuance struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BusinessTaxID references the issuing business
	BusinessTaxID string `gorm:"column:business_tax_id;not null;type:text;uniqueIndex:idx_issuances_business"`
	// Total is the outstanding supply, always >= 0
	Total decimal.Decimal `gorm:"column:total;not null;type:numeric"`
	// ModifiedAt is refreshed on every supply change
	ModifiedAt time.Time `gorm:"column:modified_at;not null"`

	// Associations
	Business Business `gorm:"foreignKey:BusinessTaxID;references:TaxID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Issuance model
func (Issuance) TableName() string {
	return "issuances"
}

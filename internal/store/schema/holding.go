package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents the holdings table - one user's token balance in one
// business, unique per (owner, business) pair. Rows are created lazily on
// first credit.
type Holding struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// OwnerEmail is the identity of the holder
	OwnerEmail string `gorm:"column:owner_email;not null;type:text;uniqueIndex:idx_holdings_owner_business,priority:1"`
	// BusinessTaxID references the business whose tokens are held
	BusinessTaxID string `gorm:"column:business_tax_id;not null;type:text;uniqueIndex:idx_holdings_owner_business,priority:2"`
	// Balance is the held token amount, always >= 0
	Balance decimal.Decimal `gorm:"column:balance;not null;type:numeric"`
	// CreatedAt is the timestamp when this holding was created
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is the timestamp when this holding was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	// Associations
	Business Business `gorm:"foreignKey:BusinessTaxID;references:TaxID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Holding model
func (Holding) TableName() string {
	return "holdings"
}

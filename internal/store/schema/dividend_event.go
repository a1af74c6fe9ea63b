package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendEvent represents the dividend_events table - an append-only audit
// log of dividend distributions. Rows are never mutated or deleted.
type DividendEvent struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BusinessTaxID references the distributing business
	BusinessTaxID string `gorm:"column:business_tax_id;not null;type:text;index:idx_dividend_events_business"`
	// DistributedAt is the distribution timestamp
	DistributedAt time.Time `gorm:"column:distributed_at;not null"`
	// TotalRevenue is the revenue figure the distribution was computed from
	TotalRevenue decimal.Decimal `gorm:"column:total_revenue;not null;type:numeric"`
	// DividendPool is revenue multiplied by the dividend percentage
	DividendPool decimal.Decimal `gorm:"column:dividend_pool;not null;type:numeric"`
	// TokenPrice is the pool divided by the total issuance at distribution time
	TokenPrice decimal.Decimal `gorm:"column:token_price;not null;type:numeric"`

	// Associations
	Business Business `gorm:"foreignKey:BusinessTaxID;references:TaxID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the DividendEvent model
func (DividendEvent) TableName() string {
	return "dividend_events"
}

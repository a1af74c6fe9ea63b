package schema

import (
	"time"
)

// Business represents the businesses table - one row per registered company.
// The auto-increment ID preserves insertion order for stable listings; TaxID
// is the business key everything else references.
type Business struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TaxID is the fixed-format tax identifier (10 or 12 ASCII digits)
	TaxID string `gorm:"column:tax_id;not null;type:text;uniqueIndex:idx_businesses_tax_id"`
	// Name is the display name, overwritten on re-registration
	Name string `gorm:"column:name;not null;type:text"`
	// CreatedAt is the timestamp when this business was first registered
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is the timestamp when this business was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the Business model
func (Business) TableName() string {
	return "businesses"
}

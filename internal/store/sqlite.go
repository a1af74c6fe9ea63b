package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tokenizelocal/tokenizelocal/internal/domain"
	"github.com/tokenizelocal/tokenizelocal/internal/store/schema"
)

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(db *gorm.DB) Store {
	return &sqliteStore{db: db}
}

// Open opens (or creates) the SQLite database file at path.
func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema. Running it against an existing database is a
// no-op, never an error.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Business{},
		&schema.Issuance{},
		&schema.Holding{},
		&schema.DividendEvent{},
		&schema.User{},
	)
}

// Transact runs fn against a transaction-scoped store
func (s *sqliteStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sqliteStore{db: tx})
	})
}

// UpsertBusiness inserts a business or overwrites its name
func (s *sqliteStore) UpsertBusiness(ctx context.Context, taxID, name string) error {
	business := schema.Business{
		TaxID: taxID,
		Name:  name,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tax_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&business).Error
	if err != nil {
		return fmt.Errorf("failed to upsert business: %w", err)
	}
	return nil
}

// GetBusiness retrieves a business by tax id
func (s *sqliteStore) GetBusiness(ctx context.Context, taxID string) (*schema.Business, error) {
	var business schema.Business
	err := s.db.WithContext(ctx).Where("tax_id = ?", taxID).First(&business).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

// GetIssuance retrieves the issuance row for a business
func (s *sqliteStore) GetIssuance(ctx context.Context, taxID string) (*schema.Issuance, error) {
	var issuance schema.Issuance
	err := s.db.WithContext(ctx).Where("business_tax_id = ?", taxID).First(&issuance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get issuance: %w", err)
	}
	return &issuance, nil
}

// SaveIssuance creates or updates an issuance row
func (s *sqliteStore) SaveIssuance(ctx context.Context, issuance *schema.Issuance) error {
	var err error
	if issuance.ID == 0 {
		err = s.db.WithContext(ctx).Create(issuance).Error
	} else {
		err = s.db.WithContext(ctx).Save(issuance).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save issuance: %w", err)
	}
	return nil
}

type issuanceStatsRow struct {
	TaxID      string
	Name       string
	Total      decimal.Decimal
	ModifiedAt time.Time
}

// GetIssuanceStats retrieves issuance joined with the business name
func (s *sqliteStore) GetIssuanceStats(ctx context.Context, taxID string) (*domain.IssuanceStats, error) {
	var row issuanceStatsRow
	result := s.db.WithContext(ctx).
		Table("issuances").
		Select("issuances.business_tax_id AS tax_id, businesses.name AS name, issuances.total AS total, issuances.modified_at AS modified_at").
		Joins("JOIN businesses ON businesses.tax_id = issuances.business_tax_id").
		Where("issuances.business_tax_id = ?", taxID).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get issuance stats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &domain.IssuanceStats{
		TaxID:      row.TaxID,
		Name:       row.Name,
		Total:      row.Total,
		ModifiedAt: row.ModifiedAt,
	}, nil
}

type issuanceListRow struct {
	TaxID      string
	Name       string
	Total      decimal.NullDecimal
	ModifiedAt *time.Time
}

// ListIssuances returns every business in insertion order, left-joined with
// its issuance row
func (s *sqliteStore) ListIssuances(ctx context.Context) ([]domain.IssuanceSummary, error) {
	var rows []issuanceListRow
	err := s.db.WithContext(ctx).
		Table("businesses").
		Select("businesses.tax_id AS tax_id, businesses.name AS name, issuances.total AS total, issuances.modified_at AS modified_at").
		Joins("LEFT JOIN issuances ON issuances.business_tax_id = businesses.tax_id").
		Order("businesses.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list issuances: %w", err)
	}

	summaries := make([]domain.IssuanceSummary, 0, len(rows))
	for _, row := range rows {
		summary := domain.IssuanceSummary{
			TaxID:      row.TaxID,
			Name:       row.Name,
			ModifiedAt: row.ModifiedAt,
		}
		if row.Total.Valid {
			total := row.Total.Decimal
			summary.Total = &total
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetHolding retrieves one (owner, business) balance row
func (s *sqliteStore) GetHolding(ctx context.Context, ownerEmail, taxID string) (*schema.Holding, error) {
	var holding schema.Holding
	err := s.db.WithContext(ctx).
		Where("owner_email = ? AND business_tax_id = ?", ownerEmail, taxID).
		First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &holding, nil
}

// SaveHolding creates or updates a holding row
func (s *sqliteStore) SaveHolding(ctx context.Context, holding *schema.Holding) error {
	var err error
	if holding.ID == 0 {
		err = s.db.WithContext(ctx).Create(holding).Error
	} else {
		err = s.db.WithContext(ctx).Save(holding).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}

type holdingListRow struct {
	TaxID   string
	Name    string
	Balance decimal.Decimal
}

// ListHoldingsByOwner returns the owner's balances joined with business names
func (s *sqliteStore) ListHoldingsByOwner(ctx context.Context, ownerEmail string) ([]domain.HoldingSummary, error) {
	var rows []holdingListRow
	err := s.db.WithContext(ctx).
		Table("holdings").
		Select("holdings.business_tax_id AS tax_id, businesses.name AS name, holdings.balance AS balance").
		Joins("JOIN businesses ON businesses.tax_id = holdings.business_tax_id").
		Where("holdings.owner_email = ?", ownerEmail).
		Order("holdings.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	summaries := make([]domain.HoldingSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.HoldingSummary{
			TaxID:   row.TaxID,
			Name:    row.Name,
			Balance: row.Balance,
		})
	}
	return summaries, nil
}

// ListHoldingsByBusiness returns every holding on one business
func (s *sqliteStore) ListHoldingsByBusiness(ctx context.Context, taxID string) ([]schema.Holding, error) {
	var holdings []schema.Holding
	err := s.db.WithContext(ctx).
		Where("business_tax_id = ?", taxID).
		Order("id ASC").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings by business: %w", err)
	}
	return holdings, nil
}

// CreateDividendEvent appends one distribution record
func (s *sqliteStore) CreateDividendEvent(ctx context.Context, event *schema.DividendEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create dividend event: %w", err)
	}
	return nil
}

type ownerDividendRow struct {
	BusinessTaxID string
	BusinessName  string
	DistributedAt time.Time
	DividendPool  decimal.Decimal
	TokenPrice    decimal.Decimal
}

// ListDividendEventsByOwner returns the most recent distributions of
// businesses the owner holds, newest first
func (s *sqliteStore) ListDividendEventsByOwner(ctx context.Context, ownerEmail string, limit int) ([]OwnerDividendEvent, error) {
	var rows []ownerDividendRow
	err := s.db.WithContext(ctx).
		Table("dividend_events").
		Select("dividend_events.business_tax_id AS business_tax_id, businesses.name AS business_name, dividend_events.distributed_at AS distributed_at, dividend_events.dividend_pool AS dividend_pool, dividend_events.token_price AS token_price").
		Joins("JOIN businesses ON businesses.tax_id = dividend_events.business_tax_id").
		Joins("JOIN holdings ON holdings.business_tax_id = dividend_events.business_tax_id").
		Where("holdings.owner_email = ?", ownerEmail).
		Order("dividend_events.distributed_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dividend events: %w", err)
	}

	events := make([]OwnerDividendEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, OwnerDividendEvent{
			BusinessTaxID: row.BusinessTaxID,
			BusinessName:  row.BusinessName,
			DistributedAt: row.DistributedAt,
			DividendPool:  row.DividendPool,
			TokenPrice:    row.TokenPrice,
		})
	}
	return events, nil
}

// CreateUser inserts a new user row
func (s *sqliteStore) CreateUser(ctx context.Context, user *schema.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (s *sqliteStore) GetUserByEmail(ctx context.Context, email string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

package postgres

import (
	"time"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Lot 对应 lots 表
type Lot struct {
	ID                    string                      `gorm:"column:id;primaryKey;type:uuid"`
	PlatformName          string                      `gorm:"column:platform_name;type:varchar(100)"`
	LotNumber             string                      `gorm:"column:lot_number;type:varchar(100);uniqueIndex;not null"`
	Title                 string                      `gorm:"column:title;type:text"`
	Description           string                      `gorm:"column:description;type:text"`
	Budget                decimal.Decimal             `gorm:"column:budget;type:decimal(15,2)"`
	Deadline              time.Time                   `gorm:"column:deadline;index"`
	Status                string                      `gorm:"column:status;type:varchar(50)"`
	ReviewStatus          string                      `gorm:"column:review_status;type:varchar(50);default:not_viewed;index"`
	OwnerID               *int64                      `gorm:"column:owner_id"`
	Customer              *string                     `gorm:"column:customer;type:varchar(255);index"`
	Nomenclature          datatypes.JSONSlice[string] `gorm:"column:nomenclature"`
	DocumentationText     *string                     `gorm:"column:documentation_text;type:text"`
	DocumentationAnalyzed bool                        `gorm:"column:documentation_analyzed;default:false"`
	Source                string                      `gorm:"column:source;type:varchar(50)"`
	URL                   *string                     `gorm:"column:url;type:varchar(500)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Lot) TableName() string {
	return "lots"
}

func (l *Lot) toDomain() *types.Lot {
	out := &types.Lot{
		ID:                    l.ID,
		LotNumber:             l.LotNumber,
		PlatformName:          l.PlatformName,
		Title:                 l.Title,
		Description:           l.Description,
		Budget:                l.Budget,
		Deadline:              l.Deadline,
		Customer:              l.Customer,
		Nomenclature:          []string(l.Nomenclature),
		Status:                types.LotStatus(l.Status),
		ReviewStatus:          types.ReviewStatus(l.ReviewStatus),
		Source:                types.LotSource(l.Source),
		DocumentationAnalyzed: l.DocumentationAnalyzed,
		OwnerID:               l.OwnerID,
		CreatedAt:             l.CreatedAt,
	}
	if l.URL != nil {
		out.URL = *l.URL
	}
	if l.DocumentationText != nil {
		out.DocumentationText = *l.DocumentationText
	}
	return out
}

// User 对应 users 表
type User struct {
	ID           int64   `gorm:"column:id;primaryKey"`
	TelegramID   *int64  `gorm:"column:telegram_id;uniqueIndex"`
	Username     *string `gorm:"column:username;type:varchar(255)"`
	FullName     string  `gorm:"column:full_name;type:varchar(255)"`
	Role         string  `gorm:"column:role;type:varchar(50);default:subscriber"`
	IsActive     bool    `gorm:"column:is_active;default:true;index"`
	ContactEmail *string `gorm:"column:contact_email;type:varchar(255)"`
	LastSeen     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) toDomain() types.Subscriber {
	role, ok := types.ParseRole(u.Role)
	if !ok {
		role = types.RoleSubscriber
	}
	s := types.Subscriber{
		ID:           u.ID,
		TelegramID:   u.TelegramID,
		FullName:     u.FullName,
		Role:         role,
		IsActive:     u.IsActive,
		ContactEmail: u.ContactEmail,
	}
	if u.Username != nil {
		s.Username = *u.Username
	}
	return s
}

// UserPreference 对应 user_preferences 表, one row per user.
type UserPreference struct {
	ID            int64                       `gorm:"column:id;primaryKey"`
	UserID        int64                       `gorm:"column:user_id;uniqueIndex;not null"`
	NotifyEnabled bool                        `gorm:"column:notify_enabled;default:true"`
	Customers     datatypes.JSONSlice[string] `gorm:"column:customers"`
	Nomenclature  datatypes.JSONSlice[string] `gorm:"column:nomenclature"`
	BudgetMin     decimal.NullDecimal         `gorm:"column:budget_min;type:decimal(15,2)"`
	BudgetMax     decimal.NullDecimal         `gorm:"column:budget_max;type:decimal(15,2)"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

func (p *UserPreference) toDomain() *types.Preference {
	out := &types.Preference{
		SubscriberID:  p.UserID,
		Customers:     []string(p.Customers),
		Nomenclature:  []string(p.Nomenclature),
		NotifyEnabled: p.NotifyEnabled,
	}
	if p.BudgetMin.Valid {
		v := p.BudgetMin.Decimal
		out.BudgetMin = &v
	}
	if p.BudgetMax.Valid {
		v := p.BudgetMax.Decimal
		out.BudgetMax = &v
	}
	return out
}

// CommercialProposal 对应 commercial_proposals 表
type CommercialProposal struct {
	ID                      string              `gorm:"column:id;primaryKey;type:uuid"`
	LotID                   *string             `gorm:"column:lot_id;type:uuid;index"`
	SupplierName            string              `gorm:"column:supplier_name;type:varchar(255)"`
	SupplierTaxID           *string             `gorm:"column:supplier_inn;type:varchar(12)"`
	ProductPrice            decimal.Decimal     `gorm:"column:product_price;type:decimal(15,2)"`
	DeliveryCost            decimal.NullDecimal `gorm:"column:delivery_cost;type:decimal(15,2)"`
	OtherConditions         string              `gorm:"column:other_conditions;type:text"`
	ItemsCount              *int                `gorm:"column:items_count"`
	SupplierRating          *int                `gorm:"column:supplier_rating"`
	SupplierReliabilityInfo string              `gorm:"column:supplier_reliability_info;type:text"`
	IntegralRating          *float64            `gorm:"column:integral_rating"`
	CreatedBy               *int64              `gorm:"column:created_by"`
	AnalyzedAt              *time.Time          `gorm:"column:analyzed_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CommercialProposal) TableName() string {
	return "commercial_proposals"
}

func (c *CommercialProposal) toDomain() *types.Proposal {
	out := &types.Proposal{
		ID:                      c.ID,
		LotID:                   c.LotID,
		SupplierName:            c.SupplierName,
		ProductPrice:            c.ProductPrice,
		OtherConditions:         c.OtherConditions,
		ItemsCount:              c.ItemsCount,
		SupplierRating:          c.SupplierRating,
		SupplierReliabilityInfo: c.SupplierReliabilityInfo,
		IntegralRating:          c.IntegralRating,
		CreatedBy:               c.CreatedBy,
		CreatedAt:               c.CreatedAt,
		AnalyzedAt:              c.AnalyzedAt,
	}
	if c.SupplierTaxID != nil {
		out.SupplierTaxID = *c.SupplierTaxID
	}
	if c.DeliveryCost.Valid {
		v := c.DeliveryCost.Decimal
		out.DeliveryCost = &v
	}
	return out
}

func proposalFromDomain(p *types.Proposal) *CommercialProposal {
	row := &CommercialProposal{
		ID:                      p.ID,
		LotID:                   p.LotID,
		SupplierName:            p.SupplierName,
		ProductPrice:            p.ProductPrice,
		OtherConditions:         p.OtherConditions,
		ItemsCount:              p.ItemsCount,
		SupplierRating:          p.SupplierRating,
		SupplierReliabilityInfo: p.SupplierReliabilityInfo,
		IntegralRating:          p.IntegralRating,
		CreatedBy:               p.CreatedBy,
		AnalyzedAt:              p.AnalyzedAt,
		CreatedAt:               p.CreatedAt,
	}
	if p.SupplierTaxID != "" {
		tax := p.SupplierTaxID
		row.SupplierTaxID = &tax
	}
	if p.DeliveryCost != nil {
		row.DeliveryCost = decimal.NullDecimal{Decimal: *p.DeliveryCost, Valid: true}
	}
	return row
}

// AllModels lists tables for AutoMigrate.
func AllModels() []any {
	return []any{&User{}, &UserPreference{}, &Lot{}, &CommercialProposal{}}
}

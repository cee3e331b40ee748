package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"procurement-radar/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LotRepo 封装对 lots 表的所有操作
type LotRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLotRepo(db *gorm.DB) *LotRepo {
	return &LotRepo{db: db, now: time.Now}
}

// Create inserts the lot unless its lot_number already exists. The returned
// bool is false when an existing row won, in which case lot is left unchanged.
func (r *LotRepo) Create(ctx context.Context, lot *types.Lot) (bool, error) {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	row := lotFromDomain(lot)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "lot_number"}}, DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	lot.CreatedAt = row.CreatedAt
	return true, nil
}

// GetByLotNumber returns nil, nil when no lot has that number.
func (r *LotRepo) GetByLotNumber(ctx context.Context, lotNumber string) (*types.Lot, error) {
	var lot Lot
	err := r.db.WithContext(ctx).
		Where("lot_number = ?", lotNumber).
		First(&lot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lot.toDomain(), nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*types.Lot, error) {
	var lot Lot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lot.toDomain(), nil
}

// SetDocumentation attaches extracted documentation text to an existing lot.
func (r *LotRepo) SetDocumentation(ctx context.Context, lotNumber, text string) error {
	return r.db.WithContext(ctx).
		Model(&Lot{}).
		Where("lot_number = ?", lotNumber).
		Updates(map[string]any{
			"documentation_text":     text,
			"documentation_analyzed": false,
		}).Error
}

// SetReviewStatus is the only path that mutates review_status.
func (r *LotRepo) SetReviewStatus(ctx context.Context, lotNumber string, status types.ReviewStatus) (*types.Lot, error) {
	result := r.db.WithContext(ctx).
		Model(&Lot{}).
		Where("lot_number = ?", lotNumber).
		Update("review_status", string(status))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByLotNumber(ctx, lotNumber)
}

// List 根据结构化条件筛选 lots, newest first
func (r *LotRepo) List(ctx context.Context, f types.LotFilter) ([]types.Lot, error) {
	tx := r.db.WithContext(ctx).Model(&Lot{})

	if len(f.LotNumbers) > 0 {
		tx = tx.Where("lot_number IN ?", f.LotNumbers)
	}

	if len(f.Customers) > 0 {
		var orConditions []string
		var orValues []any
		for _, c := range f.Customers {
			orConditions = append(orConditions, "customer ILIKE ?")
			orValues = append(orValues, "%"+c+"%")
		}
		tx = tx.Where(strings.Join(orConditions, " OR "), orValues...)
	}

	if f.ReviewStatus != "" {
		tx = tx.Where("review_status = ?", string(f.ReviewStatus))
	}

	if f.BudgetMin != nil {
		tx = tx.Where("budget >= ?", *f.BudgetMin)
	}
	if f.BudgetMax != nil {
		tx = tx.Where("budget <= ?", *f.BudgetMax)
	}

	if f.DeadlineFrom != nil {
		tx = tx.Where("deadline >= ?", *f.DeadlineFrom)
	}
	if f.DeadlineTo != nil {
		tx = tx.Where("deadline <= ?", *f.DeadlineTo)
	}
	if !f.IncludeExpired {
		tx = tx.Where("deadline >= ?", r.now())
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var rows []Lot
	if err := tx.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	lots := make([]types.Lot, 0, len(rows))
	for i := range rows {
		lots = append(lots, *rows[i].toDomain())
	}
	return lots, nil
}

// DeleteExpired removes every lot whose deadline is strictly before cutoff and
// returns the deleted lot numbers.
func (r *LotRepo) DeleteExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	var deleted []Lot
	err := r.db.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "lot_number"}}}).
		Where("deadline < ?", cutoff).
		Delete(&deleted).Error
	if err != nil {
		return nil, err
	}
	numbers := make([]string, 0, len(deleted))
	for _, l := range deleted {
		numbers = append(numbers, l.LotNumber)
	}
	return numbers, nil
}

func lotFromDomain(l *types.Lot) *Lot {
	row := &Lot{
		ID:                    l.ID,
		PlatformName:          l.PlatformName,
		LotNumber:             l.LotNumber,
		Title:                 l.Title,
		Description:           l.Description,
		Budget:                l.Budget,
		Deadline:              l.Deadline,
		Status:                string(l.Status),
		ReviewStatus:          string(l.ReviewStatus),
		OwnerID:               l.OwnerID,
		Customer:              l.Customer,
		Nomenclature:          l.Nomenclature,
		DocumentationAnalyzed: l.DocumentationAnalyzed,
		Source:                string(l.Source),
	}
	if l.URL != "" {
		u := l.URL
		row.URL = &u
	}
	if l.DocumentationText != "" {
		t := l.DocumentationText
		row.DocumentationText = &t
	}
	return row
}

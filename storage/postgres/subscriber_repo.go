package postgres

import (
	"context"
	"errors"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriberRepo 封装 users 与 user_preferences 的读写
type SubscriberRepo struct {
	db *gorm.DB
}

func NewSubscriberRepo(db *gorm.DB) *SubscriberRepo {
	return &SubscriberRepo{db: db}
}

func (r *SubscriberRepo) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// Get returns nil, nil for an unknown id.
func (r *SubscriberRepo) Get(ctx context.Context, id int64) (*types.Subscriber, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := u.toDomain()
	return &s, nil
}

func (r *SubscriberRepo) ListActive(ctx context.Context) ([]types.Subscriber, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]types.Subscriber, 0, len(users))
	for i := range users {
		out = append(out, users[i].toDomain())
	}
	return out, nil
}

// GetOrCreatePreference lazily creates the default preference row.
func (r *SubscriberRepo) GetOrCreatePreference(ctx context.Context, subscriberID int64) (*types.Preference, error) {
	pref := UserPreference{UserID: subscriberID, NotifyEnabled: true}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&pref).Error
	if err != nil {
		return nil, err
	}
	var stored UserPreference
	if err := r.db.WithContext(ctx).Where("user_id = ?", subscriberID).First(&stored).Error; err != nil {
		return nil, err
	}
	return stored.toDomain(), nil
}

// UpdatePreference applies the non-nil fields of upd.
func (r *SubscriberRepo) UpdatePreference(ctx context.Context, subscriberID int64, upd types.PreferenceUpdate) (*types.Preference, error) {
	if _, err := r.GetOrCreatePreference(ctx, subscriberID); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.Customers != nil {
		changes["customers"] = datatypesList(*upd.Customers)
	}
	if upd.Nomenclature != nil {
		changes["nomenclature"] = datatypesList(*upd.Nomenclature)
	}
	if upd.ClearBudgetMin {
		changes["budget_min"] = decimal.NullDecimal{}
	} else if upd.BudgetMin != nil {
		changes["budget_min"] = decimal.NullDecimal{Decimal: *upd.BudgetMin, Valid: true}
	}
	if upd.ClearBudgetMax {
		changes["budget_max"] = decimal.NullDecimal{}
	} else if upd.BudgetMax != nil {
		changes["budget_max"] = decimal.NullDecimal{Decimal: *upd.BudgetMax, Valid: true}
	}
	if upd.NotifyEnabled != nil {
		changes["notify_enabled"] = *upd.NotifyEnabled
	}

	if len(changes) > 0 {
		err := r.db.WithContext(ctx).
			Model(&UserPreference{}).
			Where("user_id = ?", subscriberID).
			Updates(changes).Error
		if err != nil {
			return nil, err
		}
	}
	return r.GetOrCreatePreference(ctx, subscriberID)
}

package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository exposes persistence helpers for discount rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveRules(ctx context.Context, accountType enums.AccountType) ([]models.DiscountRule, error)
	Create(ctx context.Context, rule *models.DiscountRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error)
	List(ctx context.Context, params listRulesParams) ([]models.DiscountRule, *pagination.Cursor, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a discount rule repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listRulesParams struct {
	AccountType *enums.AccountType
	Active      *bool
	Limit       int
	Cursor      *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// FindActiveRules returns active rules for accountType, oldest first.
func (r *repositoryImpl) FindActiveRules(ctx context.Context, accountType enums.AccountType) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	err := r.db.WithContext(ctx).
		Where("account_type = ? AND is_active = ?", accountType, true).
		Order("created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repositoryImpl) Create(ctx context.Context, rule *models.DiscountRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	var rule models.DiscountRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listRulesParams) ([]models.DiscountRule, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.DiscountRule{})
	if params.AccountType != nil {
		query = query.Where("account_type = ?", *params.AccountType)
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) >= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rules []models.DiscountRule
	err := query.
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rules).Error
	if err != nil {
		return nil, nil, err
	}

	page, next := pagination.Trim(rules, params.Limit, func(rule models.DiscountRule) pagination.Cursor {
		return pagination.Cursor{CreatedAt: rule.CreatedAt, ID: rule.ID}
	})
	return page, next, nil
}

// SetActive flips is_active and reports whether the rule exists.
func (r *repositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DiscountRule{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DiscountRule{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the rule and reports whether it existed.
func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DiscountRule{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

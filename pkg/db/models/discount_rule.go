package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// DiscountRule is a percentage discount for one account type, optionally
// narrowed to a single category, brand, supplier, or warehouse.
type DiscountRule struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name               string            `gorm:"column:name;not null;default:''" json:"name"`
	AccountType        enums.AccountType `gorm:"column:account_type;not null" json:"account_type"`
	DiscountPercentage decimal.Decimal   `gorm:"column:discount_percentage;type:numeric(5,2);not null" json:"discount_percentage"`
	MinimumOrderAmount decimal.Decimal   `gorm:"column:minimum_order_amount;type:numeric(12,2);not null;default:0" json:"minimum_order_amount"`
	IsActive           bool              `gorm:"column:is_active;not null" json:"is_active"`
	CategoryID         *uuid.UUID        `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	BrandID            *uuid.UUID        `gorm:"column:brand_id;type:uuid" json:"brand_id,omitempty"`
	SupplierID         *uuid.UUID        `gorm:"column:supplier_id;type:uuid" json:"supplier_id,omitempty"`
	WarehouseID        *uuid.UUID        `gorm:"column:warehouse_id;type:uuid" json:"warehouse_id,omitempty"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DiscountRule) TableName() string {
	return "discount_rules"
}

// BeforeCreate assigns an id so inserts do not depend on a database default.
func (r *DiscountRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Scope returns the rule's tier and scoping id. Global rules return a nil id.
// When several scope columns are populated the strongest tier is reported.
func (r DiscountRule) Scope() (enums.DiscountSource, *uuid.UUID) {
	switch {
	case r.CategoryID != nil:
		return enums.DiscountSourceCategory, r.CategoryID
	case r.BrandID != nil:
		return enums.DiscountSourceBrand, r.BrandID
	case r.SupplierID != nil:
		return enums.DiscountSourceSupplier, r.SupplierID
	case r.WarehouseID != nil:
		return enums.DiscountSourceWarehouse, r.WarehouseID
	default:
		return enums.DiscountSourceGlobal, nil
	}
}

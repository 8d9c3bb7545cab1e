package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product holds the catalog listing plus every price field the resolver reads.
type Product struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SKU                string              `gorm:"column:sku;not null"`
	Title              string              `gorm:"column:title;not null"`
	CategoryID         *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	BrandID            *uuid.UUID          `gorm:"column:brand_id;type:uuid"`
	DefaultSupplierID  *uuid.UUID          `gorm:"column:default_supplier_id;type:uuid"`
	DefaultWarehouseID *uuid.UUID          `gorm:"column:default_warehouse_id;type:uuid"`
	BasePrice          decimal.Decimal     `gorm:"column:base_price;type:numeric(12,2);not null"`
	SalePrice          decimal.NullDecimal `gorm:"column:sale_price;type:numeric(12,2)"`
	WholesalePrice     decimal.NullDecimal `gorm:"column:wholesale_price;type:numeric(12,2)"`
	GovernmentPrice    decimal.NullDecimal `gorm:"column:government_price;type:numeric(12,2)"`
	IsActive           bool                `gorm:"column:is_active;not null"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns an id so inserts do not depend on a database default.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

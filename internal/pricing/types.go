package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// ProductPricingInfo is the pricing-relevant snapshot of a product. Optional
// prices are nil when the product has no such price.
type ProductPricingInfo struct {
	ID                 uuid.UUID
	CategoryID         *uuid.UUID
	BrandID            *uuid.UUID
	DefaultSupplierID  *uuid.UUID
	DefaultWarehouseID *uuid.UUID
	BasePrice          decimal.Decimal
	SalePrice          *decimal.Decimal
	WholesalePrice     *decimal.Decimal
	GovernmentPrice    *decimal.Decimal
}

// OriginalPrice is the sale price when present, otherwise the base price.
func (p ProductPricingInfo) OriginalPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.BasePrice
}

func (p ProductPricingInfo) scopeID(source enums.DiscountSource) *uuid.UUID {
	switch source {
	case enums.DiscountSourceCategory:
		return p.CategoryID
	case enums.DiscountSourceBrand:
		return p.BrandID
	case enums.DiscountSourceSupplier:
		return p.DefaultSupplierID
	case enums.DiscountSourceWarehouse:
		return p.DefaultWarehouseID
	default:
		return nil
	}
}

// DiscountResult is the resolved unit price for one product.
type DiscountResult struct {
	OriginalPrice      decimal.Decimal       `json:"original_price"`
	DiscountedPrice    decimal.Decimal       `json:"discounted_price"`
	DiscountPercentage decimal.Decimal       `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal       `json:"discount_amount"`
	AppliedDiscountID  *uuid.UUID            `json:"applied_discount_id"`
	DiscountSource     *enums.DiscountSource `json:"discount_source"`
}

// RuleRepository returns the active rules for an account type in ascending
// creation order.
type RuleRepository interface {
	FindActiveRules(ctx context.Context, accountType enums.AccountType) ([]models.DiscountRule, error)
}

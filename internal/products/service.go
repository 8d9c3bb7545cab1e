package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// MaxBatchSize bounds ListPricingInfo lookups.
const MaxBatchSize = 100

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes pricing snapshots of catalog products.
type Service interface {
	GetPricingInfo(ctx context.Context, id uuid.UUID) (*pricing.ProductPricingInfo, error)
	ListPricingInfo(ctx context.Context, ids []uuid.UUID) ([]pricing.ProductPricingInfo, error)
}

type service struct {
	repo productReader
}

// NewService builds the product pricing lookup service.
func NewService(repo productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetPricingInfo(ctx context.Context, id uuid.UUID) (*pricing.ProductPricingInfo, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	info := PricingInfo(*product)
	return &info, nil
}

// ListPricingInfo returns snapshots in the order requested. Duplicate ids are
// collapsed; any unknown id fails the whole call.
func (s *service) ListPricingInfo(ctx context.Context, ids []uuid.UUID) ([]pricing.ProductPricingInfo, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product id required")
	}
	if len(unique) > MaxBatchSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d products per request", MaxBatchSize))
	}
	for _, id := range unique {
		if id == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product ids must not be empty")
		}
	}

	rows, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	out := make([]pricing.ProductPricingInfo, 0, len(unique))
	missing := []string{}
	for _, id := range unique {
		row, ok := byID[id]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		out = append(out, PricingInfo(row))
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"missing_product_ids": missing})
	}
	return out, nil
}

// PricingInfo projects a product row onto the resolver's input.
func PricingInfo(product models.Product) pricing.ProductPricingInfo {
	return pricing.ProductPricingInfo{
		ID:                 product.ID,
		CategoryID:         product.CategoryID,
		BrandID:            product.BrandID,
		DefaultSupplierID:  product.DefaultSupplierID,
		DefaultWarehouseID: product.DefaultWarehouseID,
		BasePrice:          product.BasePrice,
		SalePrice:          nullDecimalPtr(product.SalePrice),
		WholesalePrice:     nullDecimalPtr(product.WholesalePrice),
		GovernmentPrice:    nullDecimalPtr(product.GovernmentPrice),
	}
}

func nullDecimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	v := value.Decimal
	return &v
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package quotes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type productLoader interface {
	GetPricingInfo(ctx context.Context, id uuid.UUID) (*pricing.ProductPricingInfo, error)
	ListPricingInfo(ctx context.Context, ids []uuid.UUID) ([]pricing.ProductPricingInfo, error)
}

type priceResolver interface {
	Resolve(ctx context.Context, product pricing.ProductPricingInfo, rawAccountType string, subtotal decimal.Decimal) (*pricing.DiscountResult, error)
	ResolveBatch(ctx context.Context, products []pricing.ProductPricingInfo, rawAccountType string, subtotal decimal.Decimal) (map[uuid.UUID]*pricing.DiscountResult, error)
}

// Service quotes catalog products for a purchasing account.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
	QuoteBatch(ctx context.Context, input BatchQuoteInput) (*BatchQuote, error)
}

// QuoteInput identifies one product to price. Subtotal is zero when the order
// total is not known yet.
type QuoteInput struct {
	ProductID   uuid.UUID
	AccountType string
	Subtotal    decimal.Decimal
}

// BatchQuoteInput prices several products with one account type and subtotal.
type BatchQuoteInput struct {
	ProductIDs  []uuid.UUID
	AccountType string
	Subtotal    decimal.Decimal
}

// Quote is a resolved price plus the account type it was resolved for.
type Quote struct {
	ProductID   uuid.UUID         `json:"product_id"`
	AccountType enums.AccountType `json:"account_type"`
	pricing.DiscountResult
}

// BatchQuote holds one result per requested product.
type BatchQuote struct {
	AccountType enums.AccountType                      `json:"account_type"`
	Results     map[uuid.UUID]*pricing.DiscountResult `json:"results"`
}

type service struct {
	products productLoader
	resolver priceResolver
}

// NewService wires product lookup to the discount resolver.
func NewService(products productLoader, resolver priceResolver) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &service{products: products, resolver: resolver}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.Subtotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be zero or greater")
	}
	product, err := s.products.GetPricingInfo(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	result, err := s.resolver.Resolve(ctx, *product, input.AccountType, input.Subtotal)
	if err != nil {
		return nil, err
	}
	return &Quote{
		ProductID:      product.ID,
		AccountType:    enums.NormalizeAccountType(input.AccountType),
		DiscountResult: *result,
	}, nil
}

func (s *service) QuoteBatch(ctx context.Context, input BatchQuoteInput) (*BatchQuote, error) {
	if input.Subtotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be zero or greater")
	}
	products, err := s.products.ListPricingInfo(ctx, input.ProductIDs)
	if err != nil {
		return nil, err
	}
	results, err := s.resolver.ResolveBatch(ctx, products, input.AccountType, input.Subtotal)
	if err != nil {
		return nil, err
	}
	return &BatchQuote{
		AccountType: enums.NormalizeAccountType(input.AccountType),
		Results:     results,
	}, nil
}

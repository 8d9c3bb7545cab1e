package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const defaultBatchParallel = 8

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

type resolutionObserver interface {
	ObserveResolution(accountType, source string)
	ObserveFailure(accountType string)
	ObserveBatch(size int)
}

// Resolver computes the authoritative unit price for a product and account type.
type Resolver struct {
	rules       RuleRepository
	metrics     resolutionObserver
	parallelism int
}

// NewResolver builds a resolver around the provided rule repository. metrics may
// be nil; parallelism <= 0 falls back to a sane default.
func NewResolver(rules RuleRepository, metrics resolutionObserver, parallelism int) (*Resolver, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	if parallelism <= 0 {
		parallelism = defaultBatchParallel
	}
	return &Resolver{rules: rules, metrics: metrics, parallelism: parallelism}, nil
}

// Resolve prices a single product. rawAccountType may use either the legacy or
// current vocabulary; unknown values resolve as PERSONAL.
func (r *Resolver) Resolve(ctx context.Context, product ProductPricingInfo, rawAccountType string, subtotal decimal.Decimal) (*DiscountResult, error) {
	accountType := enums.NormalizeAccountType(rawAccountType)
	result, err := r.resolve(ctx, product, accountType, subtotal)
	if err != nil {
		r.observeFailure(accountType)
		return nil, err
	}
	r.observeResolution(accountType, result)
	return result, nil
}

func (r *Resolver) resolve(ctx context.Context, product ProductPricingInfo, accountType enums.AccountType, subtotal decimal.Decimal) (*DiscountResult, error) {
	original := product.OriginalPrice()

	if accountType == enums.AccountTypeGovernment && product.GovernmentPrice != nil {
		return newResult(original, *product.GovernmentPrice, nil, enums.DiscountSourceTierPrice), nil
	}

	rules, err := r.rules.FindActiveRules(ctx, accountType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unable to compute price")
	}

	best := selectRule(product, rules, subtotal)

	var (
		price   = original
		ruleID  *uuid.UUID
		source  enums.DiscountSource
		matched = best != nil
	)
	if matched {
		price = applyPercentage(original, best.rule.DiscountPercentage)
		id := best.rule.ID
		ruleID = &id
		source = best.tier
	}

	if accountType == enums.AccountTypeVolumeBuyer && product.WholesalePrice != nil {
		if product.WholesalePrice.LessThan(price) {
			return newResult(original, *product.WholesalePrice, nil, enums.DiscountSourceTierPrice), nil
		}
	}

	if !matched {
		return newResult(original, original, nil, ""), nil
	}
	return newResult(original, price, ruleID, source), nil
}

// ResolveBatch prices every product with the same account type and subtotal.
// Any single failure fails the whole batch and cancels outstanding lookups.
func (r *Resolver) ResolveBatch(ctx context.Context, products []ProductPricingInfo, rawAccountType string, subtotal decimal.Decimal) (map[uuid.UUID]*DiscountResult, error) {
	r.observeBatch(len(products))
	results := make(map[uuid.UUID]*DiscountResult, len(products))
	if len(products) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for _, product := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := r.Resolve(gctx, product, rawAccountType, subtotal)
			if err != nil {
				return err
			}
			mu.Lock()
			results[product.ID] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type candidate struct {
	rule models.DiscountRule
	tier enums.DiscountSource
}

// selectRule walks rules in repository order. A stronger tier always replaces
// the current pick; within a tier only a strictly larger percentage does, so
// the earliest rule keeps ties.
func selectRule(product ProductPricingInfo, rules []models.DiscountRule, subtotal decimal.Decimal) *candidate {
	var best *candidate
	for _, rule := range rules {
		if !rule.IsActive || rule.MinimumOrderAmount.GreaterThan(subtotal) {
			continue
		}
		tier, scopeID := rule.Scope()
		if scopeID != nil {
			productID := product.scopeID(tier)
			if productID == nil || *productID != *scopeID {
				continue
			}
		}
		switch {
		case best == nil, tier.Outranks(best.tier):
			best = &candidate{rule: rule, tier: tier}
		case tier == best.tier && rule.DiscountPercentage.GreaterThan(best.rule.DiscountPercentage):
			best = &candidate{rule: rule, tier: tier}
		}
	}
	return best
}

func applyPercentage(price, pct decimal.Decimal) decimal.Decimal {
	pct = clampPercentage(pct)
	return price.Sub(price.Mul(pct).Div(hundred))
}

func clampPercentage(pct decimal.Decimal) decimal.Decimal {
	if pct.LessThan(zero) {
		return zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// newResult derives amount and percentage from the final price, which is kept
// exact and never exceeds the original price. Callers round for display.
func newResult(original, discounted decimal.Decimal, ruleID *uuid.UUID, source enums.DiscountSource) *DiscountResult {
	if discounted.GreaterThan(original) {
		discounted = original
	}
	if discounted.LessThan(zero) {
		discounted = zero
	}

	amount := original.Sub(discounted)
	pct := zero
	if original.GreaterThan(zero) {
		pct = amount.Mul(hundred).Div(original)
	}

	result := &DiscountResult{
		OriginalPrice:      original,
		DiscountedPrice:    discounted,
		DiscountPercentage: pct,
		DiscountAmount:     amount,
		AppliedDiscountID:  ruleID,
	}
	if source != "" {
		s := source
		result.DiscountSource = &s
	}
	return result
}

func (r *Resolver) observeResolution(accountType enums.AccountType, result *DiscountResult) {
	if r.metrics == nil {
		return
	}
	source := "none"
	if result.DiscountSource != nil {
		source = result.DiscountSource.String()
	}
	r.metrics.ObserveResolution(accountType.String(), source)
}

func (r *Resolver) observeFailure(accountType enums.AccountType) {
	if r.metrics != nil {
		r.metrics.ObserveFailure(accountType.String())
	}
}

func (r *Resolver) observeBatch(size int) {
	if r.metrics != nil {
		r.metrics.ObserveBatch(size)
	}
}

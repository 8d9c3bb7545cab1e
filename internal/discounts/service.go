package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const maxNameLength = 120

var hundred = decimal.NewFromInt(100)

// CacheInvalidator drops cached rule sets after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, accountType enums.AccountType) error
}

// Service manages discount rules for the admin surface.
type Service interface {
	CreateRule(ctx context.Context, input CreateRuleInput) (*models.DiscountRule, error)
	GetRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error)
	ListRules(ctx context.Context, params ListParams) (*ListResult, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	cache CacheInvalidator
	logg  *logger.Logger
}

// NewService builds the rule service. cache may be nil when rule caching is off.
func NewService(repo Repository, cache CacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount rule repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) CreateRule(ctx context.Context, input CreateRuleInput) (*models.DiscountRule, error) {
	rule, err := buildRule(input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "discount rule already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount rule")
	}

	s.invalidate(ctx, rule.AccountType)
	return rule, nil
}

func (s *service) GetRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount rule")
	}
	return rule, nil
}

func (s *service) ListRules(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listRulesParams{Limit: params.Limit, Active: params.Active}

	if raw := strings.TrimSpace(params.AccountType); raw != "" {
		accountType, err := enums.ParseAccountType(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type filter")
		}
		query.AccountType = &accountType
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount rules")
	}

	result := &ListResult{Items: rows}
	if result.Items == nil {
		result.Items = []models.DiscountRule{}
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule id required")
	}
	found, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount rule")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}

	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, rule.AccountType)
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount rule")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	}
	s.invalidate(ctx, rule.AccountType)
	return nil
}

// invalidate is best effort; a stale cache entry expires with its TTL.
func (s *service) invalidate(ctx context.Context, accountType enums.AccountType) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, accountType); err != nil {
		ctx = s.logg.WithAccountType(ctx, accountType.String())
		s.logg.Error(ctx, "failed to invalidate pricing rule cache", err)
	}
}

func buildRule(input CreateRuleInput) (*models.DiscountRule, error) {
	var errs error

	name := strings.TrimSpace(input.Name)
	if len(name) > maxNameLength {
		errs = multierr.Append(errs, FieldViolation{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLength)})
	}

	accountType, err := enums.ParseAccountType(input.AccountType)
	if err != nil {
		errs = multierr.Append(errs, FieldViolation{Field: "account_type", Message: "must be one of PERSONAL, VOLUME_BUYER, GOVERNMENT (or B2C, B2B, GSA)"})
	}

	if input.DiscountPercentage.IsNegative() || input.DiscountPercentage.GreaterThan(hundred) {
		errs = multierr.Append(errs, FieldViolation{Field: "discount_percentage", Message: "must be between 0 and 100"})
	}
	if input.MinimumOrderAmount.IsNegative() {
		errs = multierr.Append(errs, FieldViolation{Field: "minimum_order_amount", Message: "must be zero or greater"})
	}

	scopes := 0
	for _, id := range []*uuid.UUID{input.CategoryID, input.BrandID, input.SupplierID, input.WarehouseID} {
		if id == nil {
			continue
		}
		if *id == uuid.Nil {
			errs = multierr.Append(errs, FieldViolation{Field: "scope", Message: "scope ids must not be empty"})
		}
		scopes++
	}
	if scopes > 1 {
		errs = multierr.Append(errs, FieldViolation{Field: "scope", Message: "at most one of category_id, brand_id, supplier_id, warehouse_id may be set"})
	}

	if errs != nil {
		return nil, validationError(errs)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	return &models.DiscountRule{
		Name:               name,
		AccountType:        accountType,
		DiscountPercentage: input.DiscountPercentage,
		MinimumOrderAmount: input.MinimumOrderAmount,
		IsActive:           active,
		CategoryID:         input.CategoryID,
		BrandID:            input.BrandID,
		SupplierID:         input.SupplierID,
		WarehouseID:        input.WarehouseID,
	}, nil
}

func validationError(errs error) error {
	violations := []FieldViolation{}
	for _, err := range multierr.Errors(errs) {
		var violation FieldViolation
		if errors.As(err, &violation) {
			violations = append(violations, violation)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid discount rule").WithDetails(violations)
}

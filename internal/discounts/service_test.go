package discounts

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type fakeRepository struct {
	rules     map[uuid.UUID]models.DiscountRule
	createErr error
	listFn    func(ctx context.Context, params listRulesParams) ([]models.DiscountRule, *pagination.Cursor, error)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rules: map[uuid.UUID]models.DiscountRule{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) FindActiveRules(ctx context.Context, accountType enums.AccountType) ([]models.DiscountRule, error) {
	out := []models.DiscountRule{}
	for _, rule := range f.rules {
		if rule.IsActive && rule.AccountType == accountType {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeRepository) Create(ctx context.Context, rule *models.DiscountRule) error {
	if f.createErr != nil {
		return f.createErr
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now().UTC()
	f.rules[rule.ID] = *rule
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rule, nil
}

func (f *fakeRepository) List(ctx context.Context, params listRulesParams) ([]models.DiscountRule, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	rule, ok := f.rules[id]
	if !ok {
		return false, nil
	}
	rule.IsActive = active
	f.rules[id] = rule
	return true, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.rules[id]; !ok {
		return false, nil
	}
	delete(f.rules, id)
	return true, nil
}

type fakeInvalidator struct {
	invalidated []enums.AccountType
	err         error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, accountType enums.AccountType) error {
	f.invalidated = append(f.invalidated, accountType)
	return f.err
}

func newTestService(t *testing.T, repo Repository, cache CacheInvalidator, buf *bytes.Buffer) Service {
	t.Helper()
	if buf == nil {
		buf = &bytes.Buffer{}
	}
	svc, err := NewService(repo, cache, logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf}))
	require.NoError(t, err)
	return svc
}

func TestNewServiceValidatesDeps(t *testing.T) {
	_, err := NewService(nil, nil, logger.New(logger.Options{}))
	require.Error(t, err)
	_, err = NewService(newFakeRepository(), nil, nil)
	require.Error(t, err)
}

func TestServiceCreateRuleCanonicalizesLegacyAccountType(t *testing.T) {
	repo := newFakeRepository()
	cache := &fakeInvalidator{}
	svc := newTestService(t, repo, cache, nil)

	categoryID := uuid.New()
	rule, err := svc.CreateRule(context.Background(), CreateRuleInput{
		Name:               "  Wholesale category  ",
		AccountType:        "b2b",
		DiscountPercentage: decimal.RequireFromString("7.5"),
		MinimumOrderAmount: decimal.NewFromInt(250),
		CategoryID:         &categoryID,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.AccountTypeVolumeBuyer, rule.AccountType)
	assert.Equal(t, "Wholesale category", rule.Name)
	assert.True(t, rule.IsActive, "rules default to active")
	assert.Contains(t, repo.rules, rule.ID)
	assert.Equal(t, []enums.AccountType{enums.AccountTypeVolumeBuyer}, cache.invalidated)
}

func TestServiceCreateRuleCanStartInactive(t *testing.T) {
	inactive := false
	svc := newTestService(t, newFakeRepository(), nil, nil)

	rule, err := svc.CreateRule(context.Background(), CreateRuleInput{
		AccountType:        "PERSONAL",
		DiscountPercentage: decimal.NewFromInt(10),
		Active:             &inactive,
	})
	require.NoError(t, err)
	assert.False(t, rule.IsActive)
}

func TestServiceCreateRuleReportsEveryViolation(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, nil, nil)

	brandID, supplierID := uuid.New(), uuid.New()
	_, err := svc.CreateRule(context.Background(), CreateRuleInput{
		AccountType:        "reseller",
		DiscountPercentage: decimal.RequireFromString("100.01"),
		MinimumOrderAmount: decimal.RequireFromString("-1"),
		BrandID:            &brandID,
		SupplierID:         &supplierID,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	violations, ok := typed.Details().([]FieldViolation)
	require.True(t, ok)
	fields := []string{}
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"account_type", "discount_percentage", "minimum_order_amount", "scope"}, fields)
	assert.Empty(t, repo.rules)
}

func TestServiceCreateRuleBoundaries(t *testing.T) {
	svc := newTestService(t, newFakeRepository(), nil, nil)
	for _, pct := range []string{"0", "100"} {
		_, err := svc.CreateRule(context.Background(), CreateRuleInput{
			AccountType:        "GSA",
			DiscountPercentage: decimal.RequireFromString(pct),
		})
		require.NoError(t, err, pct)
	}

	nilID := uuid.Nil
	_, err := svc.CreateRule(context.Background(), CreateRuleInput{
		AccountType:        "GSA",
		DiscountPercentage: decimal.NewFromInt(1),
		WarehouseID:        &nilID,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestServiceCreateRuleRepositoryFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.createErr = errors.New("db down")
	cache := &fakeInvalidator{}
	svc := newTestService(t, repo, cache, nil)

	_, err := svc.CreateRule(context.Background(), CreateRuleInput{AccountType: "PERSONAL", DiscountPercentage: decimal.NewFromInt(1)})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, cache.invalidated)

	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "discount_rules_pkey"`)
	_, err = svc.CreateRule(context.Background(), CreateRuleInput{AccountType: "PERSONAL", DiscountPercentage: decimal.NewFromInt(1)})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestServiceGetRule(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.GetRule(context.Background(), uuid.Nil)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.GetRule(context.Background(), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	created, err := svc.CreateRule(context.Background(), CreateRuleInput{AccountType: "PERSONAL", DiscountPercentage: decimal.NewFromInt(3)})
	require.NoError(t, err)
	loaded, err := svc.GetRule(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
}

func TestServiceSetActiveInvalidatesCache(t *testing.T) {
	repo := newFakeRepository()
	cache := &fakeInvalidator{}
	svc := newTestService(t, repo, cache, nil)

	created, err := svc.CreateRule(context.Background(), CreateRuleInput{AccountType: "GOVERNMENT", DiscountPercentage: decimal.NewFromInt(3)})
	require.NoError(t, err)

	updated, err := svc.SetActive(context.Background(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, []enums.AccountType{enums.AccountTypeGovernment, enums.AccountTypeGovernment}, cache.invalidated)

	_, err = svc.SetActive(context.Background(), uuid.New(), true)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestServiceDeleteRule(t *testing.T) {
	repo := newFakeRepository()
	cache := &fakeInvalidator{}
	svc := newTestService(t, repo, cache, nil)

	created, err := svc.CreateRule(context.Background(), CreateRuleInput{AccountType: "B2C", DiscountPercentage: decimal.NewFromInt(3)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(context.Background(), created.ID))
	assert.Empty(t, repo.rules)
	assert.Len(t, cache.invalidated, 2)

	err = svc.DeleteRule(context.Background(), created.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestServiceInvalidationFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cache := &fakeInvalidator{err: errors.New("redis down")}
	svc := newTestService(t, newFakeRepository(), cache, &buf)

	_, err := svc.CreateRule(context.Background(), CreateRuleInput{AccountType: "PERSONAL", DiscountPercentage: decimal.NewFromInt(3)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "failed to invalidate pricing rule cache")
	assert.Contains(t, buf.String(), "PERSONAL")
}

func TestServiceListRules(t *testing.T) {
	next := pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := newFakeRepository()
	repo.listFn = func(ctx context.Context, params listRulesParams) ([]models.DiscountRule, *pagination.Cursor, error) {
		require.NotNil(t, params.AccountType)
		assert.Equal(t, enums.AccountTypeGovernment, *params.AccountType)
		assert.Equal(t, 1, params.Limit)
		return []models.DiscountRule{{ID: uuid.New()}}, &next, nil
	}
	svc := newTestService(t, repo, nil, nil)

	result, err := svc.ListRules(context.Background(), ListParams{AccountType: "gsa", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	decoded, err := pagination.ParseCursor(result.Cursor)
	require.NoError(t, err)
	assert.Equal(t, next.ID, decoded.ID)

	_, err = svc.ListRules(context.Background(), ListParams{AccountType: "unknown"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.ListRules(context.Background(), ListParams{Cursor: "%%%"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestServiceListRulesEmptyPage(t *testing.T) {
	svc := newTestService(t, newFakeRepository(), nil, nil)
	result, err := svc.ListRules(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Cursor)
}

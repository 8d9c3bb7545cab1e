package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/quotes"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubQuotes struct {
	quoteInput quotes.QuoteInput
	batchInput quotes.BatchQuoteInput
	err        error
}

func (s *stubQuotes) Quote(_ context.Context, input quotes.QuoteInput) (*quotes.Quote, error) {
	s.quoteInput = input
	if s.err != nil {
		return nil, s.err
	}
	source := enums.DiscountSourceGlobal
	return &quotes.Quote{
		ProductID:   input.ProductID,
		AccountType: enums.AccountTypeVolumeBuyer,
		DiscountResult: pricing.DiscountResult{
			OriginalPrice:      decimal.RequireFromString("100"),
			DiscountedPrice:    decimal.RequireFromString("90"),
			DiscountPercentage: decimal.RequireFromString("10"),
			DiscountAmount:     decimal.RequireFromString("10"),
			DiscountSource:     &source,
		},
	}, nil
}

func (s *stubQuotes) QuoteBatch(_ context.Context, input quotes.BatchQuoteInput) (*quotes.BatchQuote, error) {
	s.batchInput = input
	if s.err != nil {
		return nil, s.err
	}
	results := map[uuid.UUID]*pricing.DiscountResult{}
	for _, id := range input.ProductIDs {
		results[id] = &pricing.DiscountResult{OriginalPrice: decimal.RequireFromString("5"), DiscountedPrice: decimal.RequireFromString("5")}
	}
	return &quotes.BatchQuote{AccountType: enums.AccountTypePersonal, Results: results}, nil
}

type stubDiscounts struct {
	created   discounts.CreateRuleInput
	list      discounts.ListParams
	activeSet *bool
	deleted   uuid.UUID
	err       error
}

func (s *stubDiscounts) CreateRule(_ context.Context, input discounts.CreateRuleInput) (*models.DiscountRule, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.DiscountRule{ID: uuid.New(), Name: input.Name, AccountType: enums.AccountType(input.AccountType), DiscountPercentage: input.DiscountPercentage}, nil
}

func (s *stubDiscounts) GetRule(_ context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DiscountRule{ID: id, Name: "Wholesale"}, nil
}

func (s *stubDiscounts) ListRules(_ context.Context, params discounts.ListParams) (*discounts.ListResult, error) {
	s.list = params
	if s.err != nil {
		return nil, s.err
	}
	return &discounts.ListResult{Items: []models.DiscountRule{{ID: uuid.New()}}, Cursor: "next"}, nil
}

func (s *stubDiscounts) SetActive(_ context.Context, id uuid.UUID, active bool) (*models.DiscountRule, error) {
	s.activeSet = &active
	if s.err != nil {
		return nil, s.err
	}
	return &models.DiscountRule{ID: id, IsActive: active}, nil
}

func (s *stubDiscounts) DeleteRule(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func adminRouter(svc discounts.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/rules", AdminListDiscountRules(svc, nil))
	r.Post("/rules", AdminCreateDiscountRule(svc, nil))
	r.Get("/rules/{ruleId}", AdminGetDiscountRule(svc, nil))
	r.Post("/rules/{ruleId}/activate", AdminSetDiscountRuleActive(svc, nil, true))
	r.Post("/rules/{ruleId}/deactivate", AdminSetDiscountRuleActive(svc, nil, false))
	r.Delete("/rules/{ruleId}", AdminDeleteDiscountRule(svc, nil))
	return r
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	w := serve(HealthReady(cfg, nil, map[string]Pinger{"database": stubPinger{}, "redis": nil}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", w.Header().Get(envHeader))

	w = serve(HealthReady(cfg, nil, map[string]Pinger{"database": stubPinger{err: errors.New("down")}}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(pkgerrors.CodeDependency), decode(t, w).Error.Code)

	w = serve(HealthLive(cfg), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuotePrice(t *testing.T) {
	svc := &stubQuotes{}
	id := uuid.New()

	w := serve(QuotePrice(svc, nil), http.MethodPost, "/", `{"product_id":"`+id.String()+`","account_type":"b2b","subtotal":"250.00"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, svc.quoteInput.ProductID)
	assert.Equal(t, "b2b", svc.quoteInput.AccountType)
	assert.True(t, svc.quoteInput.Subtotal.Equal(decimal.RequireFromString("250")))

	var quote map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &quote))
	assert.Equal(t, "global", quote["discount_source"])
	assert.Equal(t, "90", quote["discounted_price"])
}

func TestQuotePriceValidation(t *testing.T) {
	svc := &stubQuotes{}
	cases := map[string]string{
		"missing product":   `{"account_type":"b2b"}`,
		"negative subtotal": `{"product_id":"` + uuid.NewString() + `","subtotal":-1}`,
		"unknown field":     `{"product_id":"` + uuid.NewString() + `","coupon":"x"}`,
		"malformed":         `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(QuotePrice(svc, nil), http.MethodPost, "/", body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, string(pkgerrors.CodeValidation), decode(t, w).Error.Code)
		})
	}
}

func TestQuotePriceMapsServiceErrors(t *testing.T) {
	svc := &stubQuotes{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	w := serve(QuotePrice(svc, nil), http.MethodPost, "/", `{"product_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.err = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "unable to compute price")
	w = serve(QuotePrice(svc, nil), http.MethodPost, "/", `{"product_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestQuoteBatch(t *testing.T) {
	svc := &stubQuotes{}
	a, b := uuid.New(), uuid.New()

	w := serve(QuoteBatch(svc, nil), http.MethodPost, "/", `{"product_ids":["`+a.String()+`","`+b.String()+`"],"subtotal":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []uuid.UUID{a, b}, svc.batchInput.ProductIDs)

	w = serve(QuoteBatch(svc, nil), http.MethodPost, "/", `{"product_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCreateDiscountRule(t *testing.T) {
	svc := &stubDiscounts{}
	h := adminRouter(svc)

	w := serve(h, http.MethodPost, "/rules", `{"name":"Wholesale","account_type":"VOLUME_BUYER","discount_percentage":"10","minimum_order_amount":0}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Wholesale", svc.created.Name)
	assert.True(t, svc.created.DiscountPercentage.Equal(decimal.NewFromInt(10)))

	w = serve(h, http.MethodPost, "/rules", `{"name":"Too much","account_type":"VOLUME_BUYER","discount_percentage":"150"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(decode(t, w).Error.Details), "discount_percentage")

	svc.err = pkgerrors.New(pkgerrors.CodeConflict, "discount rule already exists")
	w = serve(h, http.MethodPost, "/rules", `{"name":"Wholesale","account_type":"VOLUME_BUYER","discount_percentage":"10"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminListDiscountRules(t *testing.T) {
	svc := &stubDiscounts{}
	h := adminRouter(svc)

	w := serve(h, http.MethodGet, "/rules?account_type=GOVERNMENT&active=false&limit=10&cursor=abc", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "GOVERNMENT", svc.list.AccountType)
	require.NotNil(t, svc.list.Active)
	assert.False(t, *svc.list.Active)
	assert.Equal(t, 10, svc.list.Limit)
	assert.Equal(t, "abc", svc.list.Cursor)

	w = serve(h, http.MethodGet, "/rules?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(h, http.MethodGet, "/rules?active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRuleLifecycleRoutes(t *testing.T) {
	svc := &stubDiscounts{}
	h := adminRouter(svc)
	id := uuid.New()

	w := serve(h, http.MethodGet, "/rules/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(h, http.MethodPost, "/rules/"+id.String()+"/deactivate", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.activeSet)
	assert.False(t, *svc.activeSet)

	w = serve(h, http.MethodPost, "/rules/"+id.String()+"/activate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *svc.activeSet)

	w = serve(h, http.MethodDelete, "/rules/"+id.String(), "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, id, svc.deleted)

	w = serve(h, http.MethodGet, "/rules/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = pkgerrors.New(pkgerrors.CodeNotFound, "discount rule not found")
	w = serve(h, http.MethodDelete, "/rules/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/quotes"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type quoteRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	AccountType string          `json:"account_type" validate:"max=40"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

type batchQuoteRequest struct {
	ProductIDs  []uuid.UUID     `json:"product_ids" validate:"required,min=1,max=100,dive,required"`
	AccountType string          `json:"account_type" validate:"max=40"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

// QuotePrice resolves the effective price of one product.
func QuotePrice(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithAccountType(ctx, payload.AccountType)
		}
		quote, err := svc.Quote(ctx, quotes.QuoteInput{
			ProductID:   payload.ProductID,
			AccountType: payload.AccountType,
			Subtotal:    payload.Subtotal,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// QuoteBatch resolves prices for several products under one account type.
func QuoteBatch(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload batchQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"account_type": payload.AccountType,
				"batch_size":   len(payload.ProductIDs),
			})
		}
		result, err := svc.QuoteBatch(ctx, quotes.BatchQuoteInput{
			ProductIDs:  payload.ProductIDs,
			AccountType: payload.AccountType,
			Subtotal:    payload.Subtotal,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

package discounts

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CreateRuleInput describes a new discount rule. AccountType accepts legacy
// names, which are stored in canonical form.
type CreateRuleInput struct {
	Name               string
	AccountType        string
	DiscountPercentage decimal.Decimal
	MinimumOrderAmount decimal.Decimal
	Active             *bool
	CategoryID         *uuid.UUID
	BrandID            *uuid.UUID
	SupplierID         *uuid.UUID
	WarehouseID        *uuid.UUID
}

// ListParams filters the admin rule listing.
type ListParams struct {
	AccountType string
	Active      *bool
	Limit       int
	Cursor      string
}

// ListResult is one page of rules plus the cursor for the next page.
type ListResult struct {
	Items  []models.DiscountRule `json:"items"`
	Cursor string                `json:"cursor,omitempty"`
}

// FieldViolation names one invalid input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v FieldViolation) Error() string {
	return v.Field + ": " + v.Message
}

package enums

import "fmt"

// DiscountSource tags the mechanism that produced a resolved price.
type DiscountSource string

const (
	DiscountSourceCategory  DiscountSource = "category"
	DiscountSourceBrand     DiscountSource = "brand"
	DiscountSourceSupplier  DiscountSource = "supplier"
	DiscountSourceWarehouse DiscountSource = "warehouse"
	DiscountSourceGlobal    DiscountSource = "global"
	DiscountSourceTierPrice DiscountSource = "tier_price"
)

// ruleTierOrder lists rule scopes from strongest to weakest.
var ruleTierOrder = []DiscountSource{
	DiscountSourceCategory,
	DiscountSourceBrand,
	DiscountSourceSupplier,
	DiscountSourceWarehouse,
	DiscountSourceGlobal,
}

// String implements fmt.Stringer.
func (s DiscountSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountSource.
func (s DiscountSource) IsValid() bool {
	return s == DiscountSourceTierPrice || s.Rank() >= 0
}

// Rank orders rule scopes; lower wins. Returns -1 for non-rule sources.
func (s DiscountSource) Rank() int {
	for i, candidate := range ruleTierOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Outranks reports whether s is a strictly stronger rule tier than other.
func (s DiscountSource) Outranks(other DiscountSource) bool {
	rank := s.Rank()
	otherRank := other.Rank()
	if rank < 0 {
		return false
	}
	if otherRank < 0 {
		return true
	}
	return rank < otherRank
}

// ParseDiscountSource converts raw input into a DiscountSource.
func ParseDiscountSource(value string) (DiscountSource, error) {
	source := DiscountSource(value)
	if source.IsValid() {
		return source, nil
	}
	return "", fmt.Errorf("invalid discount source %q", value)
}

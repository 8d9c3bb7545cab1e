package enums

import (
	"fmt"
	"strings"
)

// AccountType classifies the purchasing entity for pricing purposes.
type AccountType string

const (
	AccountTypePersonal    AccountType = "PERSONAL"
	AccountTypeVolumeBuyer AccountType = "VOLUME_BUYER"
	AccountTypeGovernment  AccountType = "GOVERNMENT"
)

// Legacy account type names still sent by older clients and stored on older rows.
const (
	LegacyAccountTypeB2C = "B2C"
	LegacyAccountTypeB2B = "B2B"
	LegacyAccountTypeGSA = "GSA"
)

var validAccountTypes = []AccountType{
	AccountTypePersonal,
	AccountTypeVolumeBuyer,
	AccountTypeGovernment,
}

var accountTypeAliases = map[string]AccountType{
	LegacyAccountTypeB2C:           AccountTypePersonal,
	string(AccountTypePersonal):    AccountTypePersonal,
	LegacyAccountTypeB2B:           AccountTypeVolumeBuyer,
	string(AccountTypeVolumeBuyer): AccountTypeVolumeBuyer,
	LegacyAccountTypeGSA:           AccountTypeGovernment,
	string(AccountTypeGovernment):  AccountTypeGovernment,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is one of the canonical account types.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// AccountTypes lists the canonical account types.
func AccountTypes() []AccountType {
	out := make([]AccountType, len(validAccountTypes))
	copy(out, validAccountTypes)
	return out
}

// NormalizeAccountType maps legacy or current vocabulary onto the canonical set.
// Unknown input falls back to PERSONAL.
func NormalizeAccountType(value string) AccountType {
	if normalized, ok := lookupAccountType(value); ok {
		return normalized
	}
	return AccountTypePersonal
}

// ParseAccountType is the strict form of NormalizeAccountType.
func ParseAccountType(value string) (AccountType, error) {
	if normalized, ok := lookupAccountType(value); ok {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid account type %q", value)
}

func lookupAccountType(value string) (AccountType, bool) {
	key := strings.ToUpper(strings.TrimSpace(value))
	normalized, ok := accountTypeAliases[key]
	return normalized, ok
}

package enums

import "fmt"

// ProductStatus is the single-character status code stored on products.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "A"
	ProductStatusInactive     ProductStatus = "I"
	ProductStatusDiscontinued ProductStatus = "D"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
	ProductStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known status code.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Label mirrors the get_product_status database function.
func (s ProductStatus) Label() string {
	switch s {
	case ProductStatusActive:
		return "ACTIVE"
	case ProductStatusInactive:
		return "INACTIVE"
	case ProductStatusDiscontinued:
		return "DISCONTINUED"
	default:
		return "UNKNOWN"
	}
}

// ParseProductStatus converts the raw string to ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

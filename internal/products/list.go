package products

import "github.com/shopspring/decimal"

// SearchFilters describe the optional knobs of the dynamic product search.
// Unset fields do not constrain the result.
type SearchFilters struct {
	Name     string           `json:"name,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
}

const (
	// DefaultTopLimit is the row count of the top-products listing.
	DefaultTopLimit = 5
	// MaxTopLimit caps the top-products listing.
	MaxTopLimit = 100
)

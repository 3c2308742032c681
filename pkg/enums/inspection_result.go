package enums

import (
	"fmt"
	"strings"
)

// InspectionResult describes the outcome recorded on a quality inspection.
type InspectionResult string

const (
	InspectionResultPass InspectionResult = "PASS"
	InspectionResultFail InspectionResult = "FAIL"
	InspectionResultHold InspectionResult = "HOLD"
)

var validInspectionResults = []InspectionResult{
	InspectionResultPass,
	InspectionResultFail,
	InspectionResultHold,
}

// String implements fmt.Stringer.
func (r InspectionResult) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical inspection results.
func (r InspectionResult) IsValid() bool {
	for _, candidate := range validInspectionResults {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseInspectionResult converts the raw string to InspectionResult. Matching
// is case-insensitive since path segments like /partition/pass are accepted.
func ParseInspectionResult(value string) (InspectionResult, error) {
	normalized := InspectionResult(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid inspection result %q", value)
}

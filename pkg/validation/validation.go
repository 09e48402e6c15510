// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"rumahdash/pkg/constants"
	"rumahdash/pkg/mortgage"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateLoanParameters enforces the declared input ranges for the KPR
// simulation. The calculator rejects degenerate inputs on its own; this
// keeps out-of-range but otherwise computable parameters from reaching it.
func ValidateLoanParameters(params mortgage.Parameters) error {
	if params.DownPaymentPercent < constants.MinDownPaymentPercent || params.DownPaymentPercent > constants.MaxDownPaymentPercent {
		return fmt.Errorf("down payment must be between %.0f%% and %.0f%%, got %.1f%%",
			constants.MinDownPaymentPercent, constants.MaxDownPaymentPercent, params.DownPaymentPercent)
	}
	if params.AnnualRatePercent < constants.MinAnnualRatePercent || params.AnnualRatePercent > constants.MaxAnnualRatePercent {
		return fmt.Errorf("annual interest rate must be between %.1f%% and %.1f%%, got %.2f%%",
			constants.MinAnnualRatePercent, constants.MaxAnnualRatePercent, params.AnnualRatePercent)
	}
	if params.TenorYears < constants.MinTenorYears || params.TenorYears > constants.MaxTenorYears {
		return fmt.Errorf("tenor must be between %d and %d years, got %d",
			constants.MinTenorYears, constants.MaxTenorYears, params.TenorYears)
	}
	return nil
}

// ClampTopN bounds a requested top-N listing count to the supported
// range, falling back to the default when unset.
func ClampTopN(n int) int {
	if n == 0 {
		return constants.DefaultTopListings
	}
	if n < constants.MinTopListings {
		return constants.MinTopListings
	}
	if n > constants.MaxTopListings {
		return constants.MaxTopListings
	}
	return n
}

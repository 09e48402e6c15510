// Package mortgage provides the KPR annuity simulation used by the
// dashboard. The calculation is a pure function of its inputs with no
// retained state; callers may re-run it freely.
package mortgage

import (
	"errors"
	"fmt"
	"math"

	"rumahdash/pkg/constants"
)

// ErrInvalidLoanInput indicates loan parameters that cannot produce a
// meaningful annuity, such as a non-positive principal or tenor.
var ErrInvalidLoanInput = errors.New("invalid loan input")

// Parameters holds the inputs to a KPR simulation. PriceJuta is the
// house price in millions of rupiah, as stored in the listings data.
type Parameters struct {
	PriceJuta          float64
	DownPaymentPercent float64
	AnnualRatePercent  float64
	TenorYears         int
}

// Breakdown holds the results of a KPR simulation. All currency values
// are in base rupiah.
type Breakdown struct {
	HousePrice     float64
	DownPayment    float64
	Principal      float64
	MonthlyRate    float64
	Months         int
	MonthlyPayment float64
	TotalPaid      float64
	TotalInterest  float64
}

// InterestRatio returns total interest as a multiple of the principal.
func (b Breakdown) InterestRatio() float64 {
	if b.Principal == 0 {
		return 0
	}
	return b.TotalInterest / b.Principal
}

// Calculate runs the fixed-rate annuity simulation. A zero annual rate
// degenerates to straight principal division. Down payments at or
// above the full price and non-positive tenors are rejected with
// ErrInvalidLoanInput before any division takes place.
func Calculate(params Parameters) (Breakdown, error) {
	if params.PriceJuta <= 0 {
		return Breakdown{}, fmt.Errorf("%w: house price must be positive, got %.2f juta", ErrInvalidLoanInput, params.PriceJuta)
	}

	months := params.TenorYears * constants.MonthsPerYear
	if months <= 0 {
		return Breakdown{}, fmt.Errorf("%w: tenor must be positive, got %d years", ErrInvalidLoanInput, params.TenorYears)
	}

	housePrice := params.PriceJuta * constants.RupiahPerJuta
	downPayment := housePrice * params.DownPaymentPercent / constants.PercentageMultiplier
	principal := housePrice - downPayment
	if principal <= 0 {
		return Breakdown{}, fmt.Errorf("%w: down payment of %.1f%% leaves no principal", ErrInvalidLoanInput, params.DownPaymentPercent)
	}

	monthlyRate := params.AnnualRatePercent / constants.MonthsPerYear / constants.PercentageMultiplier

	var monthlyPayment float64
	if monthlyRate > 0 {
		monthlyPayment = annuityPayment(principal, monthlyRate, months)
	} else {
		// Zero interest: the payment is simply the principal spread
		// over the term.
		monthlyPayment = principal / float64(months)
	}

	totalPaid := monthlyPayment * float64(months)

	return Breakdown{
		HousePrice:     housePrice,
		DownPayment:    downPayment,
		Principal:      principal,
		MonthlyRate:    monthlyRate,
		Months:         months,
		MonthlyPayment: monthlyPayment,
		TotalPaid:      totalPaid,
		TotalInterest:  totalPaid - principal,
	}, nil
}

// annuityPayment applies the standard fixed-rate amortization formula.
func annuityPayment(principal, monthlyRate float64, months int) float64 {
	power := math.Pow(1.00+monthlyRate, float64(months))
	discountFactor := (power - 1.00) / power
	return principal * monthlyRate / discountFactor
}

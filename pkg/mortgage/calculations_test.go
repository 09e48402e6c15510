package mortgage

import (
	"errors"
	"math"
	"testing"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		params        Parameters
		expectedRange []float64 // [min, max] expected monthly payment
	}{
		{
			name: "Standard 15-year KPR",
			params: Parameters{
				PriceJuta:          1000,
				DownPaymentPercent: 20,
				AnnualRatePercent:  8.0,
				TenorYears:         15,
			},
			// 800,000,000 principal at 8% over 180 months is about
			// Rp 7,645,000 per month.
			expectedRange: []float64{7_570_000, 7_725_000},
		},
		{
			name: "Short high-rate loan",
			params: Parameters{
				PriceJuta:          500,
				DownPaymentPercent: 10,
				AnnualRatePercent:  18.0,
				TenorYears:         5,
			},
			expectedRange: []float64{11_000_000, 11_800_000},
		},
		{
			name: "No down payment",
			params: Parameters{
				PriceJuta:          300,
				DownPaymentPercent: 0,
				AnnualRatePercent:  6.0,
				TenorYears:         20,
			},
			expectedRange: []float64{2_100_000, 2_200_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := Calculate(tt.params)
			if err != nil {
				t.Fatalf("Calculate() unexpected error: %v", err)
			}

			if breakdown.MonthlyPayment < tt.expectedRange[0] || breakdown.MonthlyPayment > tt.expectedRange[1] {
				t.Errorf("Calculate() monthly payment = %.2f, expected range [%.2f, %.2f]",
					breakdown.MonthlyPayment, tt.expectedRange[0], tt.expectedRange[1])
			}
			if breakdown.TotalInterest <= 0 {
				t.Errorf("Calculate() total interest = %.2f, expected > 0", breakdown.TotalInterest)
			}

			wantTotal := breakdown.MonthlyPayment * float64(breakdown.Months)
			if math.Abs(breakdown.TotalPaid-wantTotal) > 0.01 {
				t.Errorf("Calculate() total paid = %.2f, expected %.2f", breakdown.TotalPaid, wantTotal)
			}
		})
	}
}

func TestCalculateReferenceScenario(t *testing.T) {
	// price 1000 juta, 20% down, 8% annual, 15 years.
	breakdown, err := Calculate(Parameters{
		PriceJuta:          1000,
		DownPaymentPercent: 20,
		AnnualRatePercent:  8.0,
		TenorYears:         15,
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}

	if breakdown.Principal != 800_000_000 {
		t.Errorf("principal = %.2f, expected 800,000,000", breakdown.Principal)
	}
	if breakdown.Months != 180 {
		t.Errorf("months = %d, expected 180", breakdown.Months)
	}
	if math.Abs(breakdown.MonthlyRate-0.0066667) > 0.0000001 {
		t.Errorf("monthly rate = %.7f, expected 0.0066667", breakdown.MonthlyRate)
	}

	expected := 7_649_000.0
	if math.Abs(breakdown.MonthlyPayment-expected)/expected > 0.01 {
		t.Errorf("monthly payment = %.2f, expected within 1%% of %.0f", breakdown.MonthlyPayment, expected)
	}
}

func TestCalculateZeroRate(t *testing.T) {
	// A zero rate is below the UI floor but must still divide cleanly.
	breakdown, err := Calculate(Parameters{
		PriceJuta:          600,
		DownPaymentPercent: 0,
		AnnualRatePercent:  0,
		TenorYears:         10,
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}

	if got := breakdown.MonthlyPayment * float64(breakdown.Months); got != breakdown.Principal {
		t.Errorf("zero-rate payments total %.2f, expected exactly principal %.2f", got, breakdown.Principal)
	}
	if breakdown.TotalInterest != 0 {
		t.Errorf("zero-rate total interest = %.2f, expected 0", breakdown.TotalInterest)
	}
}

func TestCalculateInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
	}{
		{
			name: "Full down payment leaves no principal",
			params: Parameters{
				PriceJuta:          1000,
				DownPaymentPercent: 100,
				AnnualRatePercent:  8.0,
				TenorYears:         15,
			},
		},
		{
			name: "Zero tenor",
			params: Parameters{
				PriceJuta:          1000,
				DownPaymentPercent: 20,
				AnnualRatePercent:  8.0,
				TenorYears:         0,
			},
		},
		{
			name: "Negative tenor",
			params: Parameters{
				PriceJuta:          1000,
				DownPaymentPercent: 20,
				AnnualRatePercent:  8.0,
				TenorYears:         -5,
			},
		},
		{
			name: "Non-positive price",
			params: Parameters{
				PriceJuta:          0,
				DownPaymentPercent: 20,
				AnnualRatePercent:  8.0,
				TenorYears:         15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.params)
			if !errors.Is(err, ErrInvalidLoanInput) {
				t.Errorf("Calculate() error = %v, expected ErrInvalidLoanInput", err)
			}
		})
	}
}

func TestCalculateMonotonicity(t *testing.T) {
	base := Parameters{
		PriceJuta:          1000,
		DownPaymentPercent: 20,
		AnnualRatePercent:  5.0,
		TenorYears:         15,
	}

	t.Run("Payment increases with rate", func(t *testing.T) {
		previous := 0.0
		for rate := 1.0; rate <= 20.0; rate += 0.5 {
			params := base
			params.AnnualRatePercent = rate
			breakdown, err := Calculate(params)
			if err != nil {
				t.Fatalf("Calculate() unexpected error at rate %.1f: %v", rate, err)
			}
			if breakdown.MonthlyPayment <= previous {
				t.Fatalf("monthly payment %.2f at rate %.1f%% did not increase over %.2f", breakdown.MonthlyPayment, rate, previous)
			}
			previous = breakdown.MonthlyPayment
		}
	})

	t.Run("Payment decreases with tenor", func(t *testing.T) {
		previous := math.Inf(1)
		for tenor := 1; tenor <= 30; tenor++ {
			params := base
			params.TenorYears = tenor
			breakdown, err := Calculate(params)
			if err != nil {
				t.Fatalf("Calculate() unexpected error at tenor %d: %v", tenor, err)
			}
			if breakdown.MonthlyPayment >= previous {
				t.Fatalf("monthly payment %.2f at tenor %d did not decrease below %.2f", breakdown.MonthlyPayment, tenor, previous)
			}
			previous = breakdown.MonthlyPayment
		}
	})
}

func TestInterestRatio(t *testing.T) {
	breakdown, err := Calculate(Parameters{
		PriceJuta:          1000,
		DownPaymentPercent: 20,
		AnnualRatePercent:  8.0,
		TenorYears:         15,
	})
	if err != nil {
		t.Fatalf("Calculate() unexpected error: %v", err)
	}

	expected := breakdown.TotalInterest / breakdown.Principal
	if got := breakdown.InterestRatio(); got != expected {
		t.Errorf("InterestRatio() = %.4f, expected %.4f", got, expected)
	}

	var empty Breakdown
	if got := empty.InterestRatio(); got != 0 {
		t.Errorf("InterestRatio() on zero principal = %.4f, expected 0", got)
	}
}

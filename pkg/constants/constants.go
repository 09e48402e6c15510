// Package constants provides shared constants for the rumahdash application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RupiahPerJuta converts listing prices (stored in millions of
	// rupiah) into base rupiah before loan arithmetic.
	RupiahPerJuta = 1_000_000.0

	// CurrencyTolerance is the tolerance for currency comparisons
	CurrencyTolerance = 0.01
)

// Loan parameter bounds enforced at the API boundary.
const (
	MinDownPaymentPercent = 0.0
	MaxDownPaymentPercent = 90.0

	MinAnnualRatePercent = 1.0
	MaxAnnualRatePercent = 20.0

	MinTenorYears = 1
	MaxTenorYears = 30
)

// Top-N listing ranking bounds and default.
const (
	MinTopListings     = 5
	MaxTopListings     = 30
	DefaultTopListings = 10
)

// PriceHistogramBins is the fixed bin count for the price distribution.
const PriceHistogramBins = 30

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultDataFile is the default listings dataset location
	DefaultDataFile = "harga_rumah_clean.csv"

	// ExportFilename is the fixed name for filtered-view CSV downloads
	ExportFilename = "harga_rumah_filtered.csv"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"
)

// ListingLabelLocationLimit caps the location portion of a listing
// selector label, matching the dashboard's truncated display.
const ListingLabelLocationLimit = 25

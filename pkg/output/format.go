// Package output provides utilities for formatting and displaying
// dataset summaries in the CLI mode.
package output

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rumahdash/internal/filter"
)

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(aggregates filter.Aggregates) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Listing summary ---\n")
	_, _ = p.Printf("Listings            : %d\n", aggregates.Summary.Count)
	if aggregates.Summary.MeanPrice != nil {
		_, _ = p.Printf("Mean price (juta)   : %.0f\n", *aggregates.Summary.MeanPrice)
	}
	if aggregates.Summary.MedianPrice != nil {
		_, _ = p.Printf("Median price (juta) : %.0f\n", *aggregates.Summary.MedianPrice)
	}
	if aggregates.Summary.MeanArea != nil {
		_, _ = p.Printf("Mean area (m2)      : %.1f\n", *aggregates.Summary.MeanArea)
	}
	if aggregates.Summary.MeanPricePerM2 != nil {
		_, _ = p.Printf("Mean price/m2 (juta): %.2f\n", *aggregates.Summary.MeanPricePerM2)
	}

	if top, ok := aggregates.TopCity(); ok {
		_, _ = p.Printf("Highest-median city : %s (~%.0f juta)\n", top.City, top.Value)
	}

	fmt.Printf("\nCity         | Median price (juta) | Listings\n")
	fmt.Printf("____         | ___________________ | ________\n")
	for _, stat := range aggregates.MedianPriceByCity {
		_, _ = p.Printf("%-12s | %19.0f | %8d\n", stat.City, stat.Value, stat.Count)
	}
}

// CsvFormat outputs the per-city ranking in comma-separated value format.
func CsvFormat(aggregates filter.Aggregates) {
	fmt.Printf(`"city","median_price_juta","mean_area_m2","listings"`)
	fmt.Printf("\n")

	areaByCity := make(map[string]float64, len(aggregates.MeanAreaByCity))
	for _, stat := range aggregates.MeanAreaByCity {
		areaByCity[stat.City] = stat.Value
	}

	for _, stat := range aggregates.MedianPriceByCity {
		fmt.Printf(`"%s","%.2f","%.2f","%d"`, stat.City, stat.Value, areaByCity[stat.City], stat.Count)
		fmt.Printf("\n")
	}
}

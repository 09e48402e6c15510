package filter

import (
	"sort"

	"rumahdash/internal/dataset"
	"rumahdash/pkg/constants"
	"rumahdash/pkg/mathutil"
)

// Summary holds the headline KPIs over a filtered view. Metrics are
// nil when no row carries that field (the mean of an empty set is
// undefined, never zero).
type Summary struct {
	Count          int      `json:"count"`
	MeanPrice      *float64 `json:"meanPrice,omitempty"`
	MedianPrice    *float64 `json:"medianPrice,omitempty"`
	MeanArea       *float64 `json:"meanArea,omitempty"`
	MeanPricePerM2 *float64 `json:"meanPricePerM2,omitempty"`
}

// CityStat is one city's value in a per-city ranking.
type CityStat struct {
	City  string  `json:"city"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// HistogramBin is one bucket of the price distribution.
type HistogramBin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// BoxStat holds the five-number summary of prices within one city,
// backing the per-city box plot.
type BoxStat struct {
	City   string  `json:"city"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Aggregates is everything the dashboard derives from a non-empty
// filtered view.
type Aggregates struct {
	Summary Summary `json:"summary"`

	// MedianPriceByCity is sorted descending; the first entry is the
	// "highest-median city" insight. MeanAreaByCity deliberately uses
	// the mean, mirroring the dashboard's two city rankings.
	MedianPriceByCity []CityStat `json:"medianPriceByCity"`
	MeanAreaByCity    []CityStat `json:"meanAreaByCity"`

	// TopListings is the top-N rows by price descending, ties keeping
	// view order.
	TopListings []Row `json:"-"`

	PriceHistogram []HistogramBin `json:"priceHistogram"`
	PriceBoxByCity []BoxStat      `json:"priceBoxByCity"`
}

// TopCity returns the highest-median city, if any ranking exists.
func (a Aggregates) TopCity() (CityStat, bool) {
	if len(a.MedianPriceByCity) == 0 {
		return CityStat{}, false
	}
	return a.MedianPriceByCity[0], true
}

// Aggregate computes all aggregates over the view. An empty view
// short-circuits with ErrEmptyResult before any statistic is touched.
func Aggregate(view View, topN int) (Aggregates, error) {
	if view.Empty() {
		return Aggregates{}, ErrEmptyResult
	}

	prices := collect(view, dataset.ColumnPrice)
	areas := collect(view, dataset.ColumnArea)
	perM2 := collect(view, dataset.ColumnPricePerM2)

	agg := Aggregates{
		Summary: Summary{
			Count:          len(view.Rows),
			MeanPrice:      meanOf(prices),
			MedianPrice:    medianOf(prices),
			MeanArea:       meanOf(areas),
			MeanPricePerM2: meanOf(perM2),
		},
		MedianPriceByCity: rankCities(view, dataset.ColumnPrice, mathutil.Median),
		MeanAreaByCity:    rankCities(view, dataset.ColumnArea, mathutil.Mean),
		TopListings:       topByPrice(view, topN),
		PriceHistogram:    priceHistogram(prices, constants.PriceHistogramBins),
		PriceBoxByCity:    priceBoxStats(view),
	}
	return agg, nil
}

// collect gathers the non-null values of one column across the view.
func collect(view View, column string) []float64 {
	var values []float64
	for _, row := range view.Rows {
		if v := row.Listing.NumericField(column); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func meanOf(values []float64) *float64 {
	if mean, ok := mathutil.Mean(values); ok {
		return &mean
	}
	return nil
}

func medianOf(values []float64) *float64 {
	if median, ok := mathutil.Median(values); ok {
		return &median
	}
	return nil
}

// rankCities groups the column by city, reduces each group, and sorts
// descending by the reduced value.
func rankCities(view View, column string, reduce func([]float64) (float64, bool)) []CityStat {
	groups := make(map[string][]float64)
	order := make([]string, 0)
	for _, row := range view.Rows {
		value := row.Listing.NumericField(column)
		if value == nil {
			continue
		}
		city := row.Listing.City
		if _, ok := groups[city]; !ok {
			order = append(order, city)
		}
		groups[city] = append(groups[city], *value)
	}
	sort.Strings(order)

	stats := make([]CityStat, 0, len(order))
	for _, city := range order {
		if value, ok := reduce(groups[city]); ok {
			stats = append(stats, CityStat{City: city, Value: value, Count: len(groups[city])})
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Value > stats[j].Value
	})
	return stats
}

// topByPrice returns up to n rows sorted by price descending. The sort
// is stable so ties keep their original view order.
func topByPrice(view View, n int) []Row {
	rows := append([]Row(nil), view.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].Listing.Price, rows[j].Listing.Price
		if pi == nil {
			return false
		}
		if pj == nil {
			return true
		}
		return *pi > *pj
	})
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}

func priceHistogram(prices []float64, bins int) []HistogramBin {
	if len(prices) == 0 || bins <= 0 {
		return nil
	}
	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if min == max {
		return []HistogramBin{{Lo: min, Hi: max, Count: len(prices)}}
	}

	width := (max - min) / float64(bins)
	histogram := make([]HistogramBin, bins)
	for i := range histogram {
		histogram[i].Lo = min + float64(i)*width
		histogram[i].Hi = min + float64(i+1)*width
	}
	for _, p := range prices {
		i := int((p - min) / width)
		if i >= bins {
			// The maximum lands in the last bin, not past it.
			i = bins - 1
		}
		histogram[i].Count++
	}
	return histogram
}

func priceBoxStats(view View) []BoxStat {
	groups := make(map[string][]float64)
	for _, row := range view.Rows {
		if row.Listing.Price == nil {
			continue
		}
		groups[row.Listing.City] = append(groups[row.Listing.City], *row.Listing.Price)
	}

	cities := make([]string, 0, len(groups))
	for city := range groups {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	stats := make([]BoxStat, 0, len(cities))
	for _, city := range cities {
		prices := groups[city]
		min, _ := mathutil.Percentile(prices, 0)
		q1, _ := mathutil.Percentile(prices, 25)
		median, _ := mathutil.Percentile(prices, 50)
		q3, _ := mathutil.Percentile(prices, 75)
		max, _ := mathutil.Percentile(prices, 100)
		stats = append(stats, BoxStat{
			City: city, Min: min, Q1: q1, Median: median, Q3: q3, Max: max,
			Count: len(prices),
		})
	}
	return stats
}

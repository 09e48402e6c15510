// Package filter evaluates user filter criteria against the listings
// dataset and computes the aggregates the dashboard displays. Every
// evaluation is a pure function of (dataset, criteria); there is no
// incremental state between calls.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"rumahdash/internal/dataset"
)

// ErrEmptyResult indicates the criteria excluded every listing. It is
// recoverable: the user is prompted to relax filters, and no aggregate
// is computed over the empty set.
var ErrEmptyResult = errors.New("no listings match the current filters")

// Criteria is a snapshot of the user-chosen predicate bounds. A
// listing is kept only when every active predicate holds. Range bounds
// are inclusive on both ends.
type Criteria struct {
	Cities       []string `json:"cities"`
	PriceMin     float64  `json:"priceMin"`
	PriceMax     float64  `json:"priceMax"`
	AreaMin      float64  `json:"areaMin"`
	AreaMax      float64  `json:"areaMax"`
	MinBedrooms  float64  `json:"minBedrooms"`
	MinBathrooms float64  `json:"minBathrooms"`
	Keyword      string   `json:"keyword"`
}

// DefaultCriteria selects the full dataset: every city and the
// dataset-derived bounds for each range.
func DefaultCriteria(ds *dataset.Dataset) Criteria {
	return Criteria{
		Cities:       append([]string(nil), ds.Cities...),
		PriceMin:     ds.Bounds.PriceMin,
		PriceMax:     ds.Bounds.PriceMax,
		AreaMin:      ds.Bounds.AreaMin,
		AreaMax:      ds.Bounds.AreaMax,
		MinBedrooms:  ds.Bounds.BedroomsMin,
		MinBathrooms: ds.Bounds.BathroomsMin,
	}
}

// Row is one listing in a filtered view. Ordinal is the row's stable
// position within the view for the current render pass; listing
// selection (e.g. as the mortgage price source) is by this ordinal.
type Row struct {
	Ordinal int
	Listing dataset.Listing
}

// View is the subset of the dataset satisfying all criteria, in
// original dataset order.
type View struct {
	Rows []Row
}

// Empty reports whether the view has no rows.
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// Resolve returns the listing at the given view ordinal.
func (v View) Resolve(ordinal int) (dataset.Listing, error) {
	if ordinal < 0 || ordinal >= len(v.Rows) {
		return dataset.Listing{}, fmt.Errorf("listing index %d out of range (view has %d rows)", ordinal, len(v.Rows))
	}
	return v.Rows[ordinal].Listing, nil
}

// Apply evaluates criteria over the dataset. An empty city selection
// matches no rows; that is a valid (empty) view, not an error.
func Apply(ds *dataset.Dataset, criteria Criteria) View {
	cities := make(map[string]struct{}, len(criteria.Cities))
	for _, city := range criteria.Cities {
		cities[city] = struct{}{}
	}
	keyword := strings.ToLower(strings.TrimSpace(criteria.Keyword))

	var view View
	for _, listing := range ds.Listings {
		if !matches(listing, criteria, cities, keyword) {
			continue
		}
		view.Rows = append(view.Rows, Row{Ordinal: len(view.Rows), Listing: listing})
	}
	return view
}

func matches(l dataset.Listing, c Criteria, cities map[string]struct{}, keyword string) bool {
	if _, ok := cities[l.City]; !ok {
		return false
	}
	if !between(l.Price, c.PriceMin, c.PriceMax) {
		return false
	}
	if !between(l.Area, c.AreaMin, c.AreaMax) {
		return false
	}
	if !atLeast(l.Bedrooms, c.MinBedrooms) {
		return false
	}
	if !atLeast(l.Bathrooms, c.MinBathrooms) {
		return false
	}
	if keyword != "" && !containsKeyword(l, keyword) {
		return false
	}
	return true
}

// between is false for null values: a row with an unparsable price
// cannot satisfy a price range.
func between(value *float64, min, max float64) bool {
	return value != nil && *value >= min && *value <= max
}

func atLeast(value *float64, min float64) bool {
	return value != nil && *value >= min
}

// containsKeyword does a case-insensitive substring match against
// title and location. Empty fields are non-matching, not errors.
func containsKeyword(l dataset.Listing, keyword string) bool {
	if l.Title != "" && strings.Contains(strings.ToLower(l.Title), keyword) {
		return true
	}
	if l.Location != "" && strings.Contains(strings.ToLower(l.Location), keyword) {
		return true
	}
	return false
}

// Package dataset loads and normalizes the housing listings table that
// backs the dashboard. Listings are immutable once loaded; filtering
// elsewhere produces views over them, never edits.
package dataset

// Column names of the normalized listings table, in export order.
const (
	ColumnCity         = "city"
	ColumnLocation     = "location"
	ColumnTitle        = "title"
	ColumnPrice        = "price"
	ColumnArea         = "area"
	ColumnBuildingArea = "building_area"
	ColumnBedrooms     = "bedrooms"
	ColumnBathrooms    = "bathrooms"
	ColumnGarage       = "garage"
	ColumnPricePerM2   = "price_per_m2"
)

// Columns lists every column of the normalized table in export order.
func Columns() []string {
	return []string{
		ColumnCity, ColumnLocation, ColumnTitle, ColumnPrice, ColumnArea,
		ColumnBuildingArea, ColumnBedrooms, ColumnBathrooms, ColumnGarage,
		ColumnPricePerM2,
	}
}

// Listing is one housing record. Numeric fields are nil when the
// source value was missing or unparsable; such rows stay in the table
// but are excluded from aggregates over that field.
type Listing struct {
	City         string   `json:"city"`
	Location     string   `json:"location"`
	Title        string   `json:"title"`
	Price        *float64 `json:"price"`
	Area         *float64 `json:"area"`
	BuildingArea *float64 `json:"building_area"`
	Bedrooms     *float64 `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	Garage       *float64 `json:"garage"`

	// PricePerM2 is derived at load time: price / area when area > 0,
	// nil otherwise.
	PricePerM2 *float64 `json:"price_per_m2"`
}

// NumericField returns the named numeric column value, or nil for
// string columns and unknown names.
func (l *Listing) NumericField(column string) *float64 {
	switch column {
	case ColumnPrice:
		return l.Price
	case ColumnArea:
		return l.Area
	case ColumnBuildingArea:
		return l.BuildingArea
	case ColumnBedrooms:
		return l.Bedrooms
	case ColumnBathrooms:
		return l.Bathrooms
	case ColumnGarage:
		return l.Garage
	case ColumnPricePerM2:
		return l.PricePerM2
	}
	return nil
}

// Bounds holds the dataset-derived min/max for each filterable numeric
// column. Defaults for the filter controls are the full range.
type Bounds struct {
	PriceMin     float64 `json:"priceMin"`
	PriceMax     float64 `json:"priceMax"`
	AreaMin      float64 `json:"areaMin"`
	AreaMax      float64 `json:"areaMax"`
	BedroomsMin  float64 `json:"bedroomsMin"`
	BedroomsMax  float64 `json:"bedroomsMax"`
	BathroomsMin float64 `json:"bathroomsMin"`
	BathroomsMax float64 `json:"bathroomsMax"`
}

// Dataset is the normalized listings table plus load-time derived
// metadata. It is shared read-only across sessions.
type Dataset struct {
	Listings []Listing
	Cities   []string
	Bounds   Bounds
}

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingDataSource indicates the listings file does not exist or
// cannot be read. This is fatal for the session; no partial dataset is
// produced.
var ErrMissingDataSource = errors.New("listings data source missing")

// Load reads and normalizes the listings CSV at path.
func Load(logger *zap.Logger, path string) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingDataSource, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingDataSource, path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn("failed to close listings file",
				zap.String("op", "dataset.Load"),
				zap.Error(closeErr),
			)
		}
	}()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listings at %s: %w", path, err)
	}

	logger.Info("listings loaded",
		zap.String("op", "dataset.Load"),
		zap.String("path", path),
		zap.Int("rows", len(ds.Listings)),
		zap.Int("cities", len(ds.Cities)),
	)
	return ds, nil
}

// Parse reads the listings table from r. The first record is the
// header; a leading unnamed (or pandas "Unnamed: 0") index column is
// dropped. Numeric values that fail to parse become nil rather than
// errors, so one bad cell never drops a row.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 && (name == "" || name == "Unnamed: 0") {
			continue
		}
		index[name] = i
	}
	for _, required := range []string{ColumnCity, ColumnPrice, ColumnArea} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var listings []Listing
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		listing := Listing{
			City:         stringField(record, index, ColumnCity),
			Location:     stringField(record, index, ColumnLocation),
			Title:        stringField(record, index, ColumnTitle),
			Price:        numericField(record, index, ColumnPrice),
			Area:         numericField(record, index, ColumnArea),
			BuildingArea: numericField(record, index, ColumnBuildingArea),
			Bedrooms:     numericField(record, index, ColumnBedrooms),
			Bathrooms:    numericField(record, index, ColumnBathrooms),
			Garage:       numericField(record, index, ColumnGarage),
		}
		if listing.Price != nil && listing.Area != nil && *listing.Area > 0 {
			perM2 := *listing.Price / *listing.Area
			listing.PricePerM2 = &perM2
		}
		listings = append(listings, listing)
	}

	return &Dataset{
		Listings: listings,
		Cities:   distinctCities(listings),
		Bounds:   deriveBounds(listings),
	}, nil
}

func stringField(record []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func numericField(record []string, index map[string]int, column string) *float64 {
	i, ok := index[column]
	if !ok || i >= len(record) {
		return nil
	}
	raw := strings.TrimSpace(record[i])
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Permissive coercion: unparsable numerics become null.
		return nil
	}
	return &value
}

func distinctCities(listings []Listing) []string {
	seen := make(map[string]struct{})
	var cities []string
	for _, l := range listings {
		if l.City == "" {
			continue
		}
		if _, ok := seen[l.City]; !ok {
			seen[l.City] = struct{}{}
			cities = append(cities, l.City)
		}
	}
	sort.Strings(cities)
	return cities
}

// deriveBounds computes the min/max of each filterable column over the
// non-null values. These seed the filter controls with the full range.
func deriveBounds(listings []Listing) Bounds {
	var b Bounds
	priceSet, areaSet, bedroomsSet, bathroomsSet := false, false, false, false
	for _, l := range listings {
		updateRange(l.Price, &b.PriceMin, &b.PriceMax, &priceSet)
		updateRange(l.Area, &b.AreaMin, &b.AreaMax, &areaSet)
		updateRange(l.Bedrooms, &b.BedroomsMin, &b.BedroomsMax, &bedroomsSet)
		updateRange(l.Bathrooms, &b.BathroomsMin, &b.BathroomsMax, &bathroomsSet)
	}
	return b
}

func updateRange(value *float64, min, max *float64, set *bool) {
	if value == nil {
		return
	}
	if !*set {
		*min, *max = *value, *value
		*set = true
		return
	}
	if *value < *min {
		*min = *value
	}
	if *value > *max {
		*max = *value
	}
}

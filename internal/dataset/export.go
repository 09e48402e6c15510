package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV serializes listings to w with a header row and all columns,
// no index column. Null numeric fields become empty cells.
func WriteCSV(w io.Writer, listings []Listing) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.City,
			l.Location,
			l.Title,
			numericCell(l.Price),
			numericCell(l.Area),
			numericCell(l.BuildingArea),
			numericCell(l.Bedrooms),
			numericCell(l.Bathrooms),
			numericCell(l.Garage),
			numericCell(l.PricePerM2),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func numericCell(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

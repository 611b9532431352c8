// Package loader reads the historical price and yield-curve CSV files into
// the in-memory series the pricing engine consumes. All validation of series
// invariants lives in the model constructors; the loader only parses.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"CertSentinel/internal/model"
)

var ErrMissingColumn = errors.New("required column not found")

const dateLayout = "2006-01-02"

// LoadPriceSeries reads a CSV with Date and Adjusted Close columns, sorted
// ascending by date.
func LoadPriceSeries(path string) (*model.PriceSeries, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	dateCol, err := findColumn(rows[0], "Date")
	if err != nil {
		return nil, err
	}
	closeCol, err := findColumn(rows[0], "Adjusted Close", "Adj Close")
	if err != nil {
		return nil, err
	}

	points := make([]model.PricePoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date: %w", i+2, err)
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(row[closeCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse close: %w", i+2, err)
		}
		points = append(points, model.PricePoint{Date: date, Close: close})
	}
	series, err := model.NewPriceSeries(points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadRateCurve reads a CSV with Date and Interest Rate columns. The file
// carries annualized percentages; the curve stores decimals.
func LoadRateCurve(path string) (*model.RateCurve, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	dateCol, err := findColumn(rows[0], "Date")
	if err != nil {
		return nil, err
	}
	rateCol, err := findColumn(rows[0], "Interest Rate", "Rate")
	if err != nil {
		return nil, err
	}

	points := make([]model.RatePoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date: %w", i+2, err)
		}
		pct, err := strconv.ParseFloat(strings.TrimSpace(row[rateCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse rate: %w", i+2, err)
		}
		points = append(points, model.RatePoint{Date: date, Rate: pct / 100})
	}
	curve, err := model.NewRateCurve(points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return curve, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", path, model.ErrEmptySeries)
	}
	return rows, nil
}

// findColumn resolves a header name case-insensitively, trying each
// candidate in order.
func findColumn(header []string, candidates ...string) (int, error) {
	for _, want := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingColumn, candidates[0])
}

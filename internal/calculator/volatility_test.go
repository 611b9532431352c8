package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"CertSentinel/internal/model"
)

func newSeries(t *testing.T, closes []float64) *model.PriceSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	series, err := model.NewPriceSeries(points)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return series
}

func dateAt(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func TestEstimateVolatility_ConstantSeriesIsZero(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 3487.05
	}
	series := newSeries(t, closes)

	vol, err := EstimateVolatility(series, dateAt(49), 21, 1.0/252)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if vol.Sigma != 0 {
		t.Errorf("expected sigma exactly 0 for constant series, got %g", vol.Sigma)
	}
}

func TestEstimateVolatility_KnownValue(t *testing.T) {
	// Alternating returns +c, -c have mean 0 and population std exactly c.
	dt := 1.0 / 252
	c := 0.15 * math.Sqrt(dt)
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
		if i%2 == 1 {
			closes[i] = 100 * math.Exp(c)
		}
	}
	series := newSeries(t, closes)

	vol, err := EstimateVolatility(series, dateAt(19), 3, dt)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if math.Abs(vol.Sigma-0.15) > 1e-12 {
		t.Errorf("expected sigma 0.15, got %.15f", vol.Sigma)
	}
	if vol.Window != 3 || vol.Dt != dt {
		t.Errorf("estimate not tagged with inputs: %+v", vol)
	}
}

func TestEstimateVolatility_ExcludesValuationDate(t *testing.T) {
	// A huge jump on the valuation date must not affect the estimate.
	closes := []float64{100, 101, 100, 101, 100, 500}
	series := newSeries(t, closes)

	vol, err := EstimateVolatility(series, dateAt(5), 4, 1.0/252)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	calm := newSeries(t, []float64{100, 101, 100, 101, 100, 100})
	ref, err := EstimateVolatility(calm, dateAt(5), 4, 1.0/252)
	if err != nil {
		t.Fatalf("estimate reference: %v", err)
	}
	if vol.Sigma != ref.Sigma {
		t.Errorf("valuation-date price leaked into estimate: %g vs %g", vol.Sigma, ref.Sigma)
	}
}

func TestEstimateVolatility_ScaleInvariance(t *testing.T) {
	closes := []float64{100, 104, 99, 103, 101, 98, 102, 100, 105, 101}
	series := newSeries(t, closes)

	scaled := make([]float64, len(closes))
	for i, c := range closes {
		scaled[i] = c * 3.7
	}
	scaledSeries := newSeries(t, scaled)

	date := dateAt(len(closes) - 1)
	a, err := EstimateVolatility(series, date, 7, 1.0/252)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	b, err := EstimateVolatility(scaledSeries, date, 7, 1.0/252)
	if err != nil {
		t.Fatalf("estimate scaled: %v", err)
	}
	if math.Abs(a.Sigma-b.Sigma) > 1e-12 {
		t.Errorf("sigma not scale-invariant: %.15f vs %.15f", a.Sigma, b.Sigma)
	}
}

func TestEstimateVolatility_Errors(t *testing.T) {
	series := newSeries(t, []float64{100, 101, 102, 103, 104})

	tests := []struct {
		name   string
		date   time.Time
		window int
		dt     float64
		want   error
	}{
		{"window too small", dateAt(4), 1, 1.0 / 252, ErrInvalidWindow},
		{"non-positive dt", dateAt(4), 3, 0, ErrInvalidStep},
		{"date not in series", dateAt(40), 3, 1.0 / 252, ErrDateNotFound},
		{"window exceeds history", dateAt(4), 5, 1.0 / 252, ErrInsufficientHistory},
		{"no history at series start", dateAt(0), 2, 1.0 / 252, ErrInsufficientHistory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateVolatility(series, tt.date, tt.window, tt.dt)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLogReturns(t *testing.T) {
	returns, err := LogReturns([]float64{100, 110, 99})
	if err != nil {
		t.Fatalf("log returns: %v", err)
	}
	if len(returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(returns))
	}
	if math.Abs(returns[0]-math.Log(1.1)) > 1e-12 {
		t.Errorf("unexpected first return: %g", returns[0])
	}

	if _, err := LogReturns([]float64{100, -5}); !errors.Is(err, model.ErrNonPositivePrice) {
		t.Errorf("expected ErrNonPositivePrice, got %v", err)
	}
	if _, err := LogReturns([]float64{100}); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

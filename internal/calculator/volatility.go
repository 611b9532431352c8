package calculator

import (
	"errors"
	"math"
	"time"

	"CertSentinel/internal/model"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidWindow       = errors.New("window must be at least 2")
	ErrInvalidStep         = errors.New("time step must be positive")
	ErrDateNotFound        = errors.New("valuation date not found in series")
	ErrInsufficientHistory = errors.New("not enough observations before valuation date")
)

// EstimateVolatility computes the annualized volatility from the `window`
// observations immediately preceding valuationDate. The observation on the
// valuation date itself never enters the estimate, so the result is free of
// look-ahead bias.
//
// The estimate is the population standard deviation (divide by N, not N-1)
// of the window-1 consecutive log-returns, scaled by 1/sqrt(dt). The
// population convention matches the historical calibration this estimator
// replaces and is applied consistently across the module.
func EstimateVolatility(series *model.PriceSeries, valuationDate time.Time, window int, dt float64) (model.VolatilityEstimate, error) {
	var est model.VolatilityEstimate
	if window < 2 {
		return est, ErrInvalidWindow
	}
	if dt <= 0 {
		return est, ErrInvalidStep
	}
	idx, ok := series.IndexOf(valuationDate)
	if !ok {
		return est, ErrDateNotFound
	}
	if idx < window {
		return est, ErrInsufficientHistory
	}

	prices := make([]float64, window)
	for i := 0; i < window; i++ {
		prices[i] = series.At(idx - window + i).Close
	}
	returns, err := LogReturns(prices)
	if err != nil {
		return est, err
	}

	return model.VolatilityEstimate{
		Sigma:         stat.PopStdDev(returns, nil) / math.Sqrt(dt),
		ValuationDate: valuationDate,
		Window:        window,
		Dt:            dt,
	}, nil
}

// LogReturns computes the consecutive log-returns ln(p[i+1]/p[i]) of a price
// slice. Returns model.ErrNonPositivePrice if any price is not positive.
func LogReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, ErrInsufficientHistory
	}
	returns := make([]float64, len(prices)-1)
	for i := range returns {
		if prices[i] <= 0 || prices[i+1] <= 0 {
			return nil, model.ErrNonPositivePrice
		}
		returns[i] = math.Log(prices[i+1]) - math.Log(prices[i])
	}
	return returns, nil
}

// Package engine orchestrates volatility estimation, path simulation, payoff
// evaluation and discounting into a single risk-neutral price estimate. The
// engine holds no state between calls; every Price invocation is a pure
// function of its inputs and seed.
package engine

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	"CertSentinel/internal/calculator"
	"CertSentinel/internal/model"
	"CertSentinel/internal/payoff"
	"CertSentinel/internal/rates"
	"CertSentinel/internal/simulator"
)

var ErrInvalidMaturity = errors.New("maturity must be after valuation date")

// TradingDaysPerYear is the step density used to convert calendar horizons
// into simulation steps.
const TradingDaysPerYear = 252.0

// Request carries the caller-controlled parameters of one pricing call.
type Request struct {
	ValuationDate time.Time
	MaturityDate  time.Time
	Window        int     // volatility lookback, in trading days
	Dt            float64 // year fraction per step, typically 1/252
	Paths         int
	Antithetic    bool
	Seed          *uint64 // nil draws from entropy
	Workers       int     // 0 uses GOMAXPROCS
}

// TradingDays approximates the number of trading days between two dates at
// the standard 252/365 density.
func TradingDays(from, to time.Time) int {
	days := to.Sub(from).Hours() / 24
	return int(math.Round(days * TradingDaysPerYear / 365.0))
}

// Price produces the present-value estimate of the supplied payoff under a
// GBM model calibrated from the series' trailing window. Any component error
// aborts the call and surfaces unchanged; no partial result is ever returned.
func Price(series *model.PriceSeries, curve *model.RateCurve, ev payoff.Evaluator, req Request) (*model.PriceEstimate, error) {
	vol, err := calculator.EstimateVolatility(series, req.ValuationDate, req.Window, req.Dt)
	if err != nil {
		return nil, err
	}
	rate, err := rates.RateAt(curve, req.ValuationDate)
	if err != nil {
		return nil, err
	}
	steps := TradingDays(req.ValuationDate, req.MaturityDate)
	if steps <= 0 {
		return nil, ErrInvalidMaturity
	}
	idx, ok := series.IndexOf(req.ValuationDate)
	if !ok {
		return nil, calculator.ErrDateNotFound
	}

	params := simulator.Params{
		Spot:       series.At(idx).Close,
		Sigma:      vol.Sigma,
		Rate:       rate,
		Dt:         req.Dt,
		Steps:      steps,
		Paths:      req.Paths,
		Antithetic: req.Antithetic,
		Seed:       req.Seed,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	mean, stderr := monteCarlo(params, ev, req.Workers)
	horizon := float64(steps) * req.Dt
	discount := math.Exp(-rate * horizon)

	return &model.PriceEstimate{
		Value:  discount * mean,
		StdErr: discount * stderr,
		Paths:  req.Paths,
		Steps:  steps,
		Window: req.Window,
		Sigma:  vol.Sigma,
		Rate:   rate,
	}, nil
}

// partial is one chunk's contribution to the Monte Carlo mean. Only sums
// cross the worker boundary, never path sets, so memory stays bounded by
// chunk size regardless of the path count.
type partial struct {
	sum   float64
	sumSq float64
}

// monteCarlo runs the path chunks across a fixed worker pool and reduces the
// partial sums in chunk order. Each chunk owns an independent sub-seeded
// stream and the reduction order is fixed, so the result is identical for
// any worker count or scheduling.
func monteCarlo(params simulator.Params, ev payoff.Evaluator, workers int) (mean, stderr float64) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	seed := params.ResolveSeed()
	chunks := params.Chunks()
	if workers > chunks {
		workers = chunks
	}

	partials := make([]partial, chunks)
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				var acc partial
				simulator.RunChunk(params, seed, idx, func(path []float64) {
					v := ev.Evaluate(path)
					acc.sum += v
					acc.sumSq += v * v
				})
				partials[idx] = acc
			}
		}()
	}
	for idx := 0; idx < chunks; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	var sum, sumSq float64
	for _, p := range partials {
		sum += p.sum
		sumSq += p.sumSq
	}

	n := float64(params.Paths)
	mean = sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0 // rounding guard for constant payoffs
	}
	return mean, math.Sqrt(variance / n)
}

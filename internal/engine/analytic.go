package engine

import (
	"math"

	"CertSentinel/internal/payoff"
	"CertSentinel/internal/simulator"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// BlackScholesCall returns the closed-form price of a European call under
// GBM. Degenerate horizons and volatilities collapse to intrinsic value.
func BlackScholesCall(spot, strike, rate, sigma, horizon float64) float64 {
	if horizon <= 0 || sigma <= 0 {
		return math.Max(spot-strike, 0)
	}
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*horizon) / (sigma * math.Sqrt(horizon))
	d2 := d1 - sigma*math.Sqrt(horizon)
	return spot*stdNormal.CDF(d1) - strike*math.Exp(-rate*horizon)*stdNormal.CDF(d2)
}

// BlackScholesPut returns the closed-form price of a European put under GBM.
func BlackScholesPut(spot, strike, rate, sigma, horizon float64) float64 {
	if horizon <= 0 || sigma <= 0 {
		return math.Max(strike-spot, 0)
	}
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*horizon) / (sigma * math.Sqrt(horizon))
	d2 := d1 - sigma*math.Sqrt(horizon)
	return strike*math.Exp(-rate*horizon)*stdNormal.CDF(-d2) - spot*stdNormal.CDF(-d1)
}

// SelfCheck prices a seeded at-the-money vanilla call by Monte Carlo and
// compares it with the closed form. It returns both prices and the distance
// between them in standard errors; the daemon runs it at startup as a sanity
// check of the simulation kernel.
func SelfCheck(paths int) (mc, analytic, stdErrs float64) {
	if paths < 2 {
		paths = 2
	}
	if paths%2 != 0 {
		paths++ // antithetic sets need an even count
	}
	seed := uint64(1)
	params := simulator.Params{
		Spot:       100,
		Sigma:      0.2,
		Rate:       0.05,
		Dt:         1.0 / TradingDaysPerYear,
		Steps:      int(TradingDaysPerYear),
		Paths:      paths,
		Antithetic: true,
		Seed:       &seed,
	}
	mean, stderr := monteCarlo(params, payoff.VanillaCall{Strike: 100}, 0)

	horizon := float64(params.Steps) * params.Dt
	discount := math.Exp(-params.Rate * horizon)
	mc = discount * mean
	analytic = BlackScholesCall(params.Spot, 100, params.Rate, params.Sigma, horizon)
	if stderr > 0 {
		stdErrs = math.Abs(mc-analytic) / (discount * stderr)
	}
	return mc, analytic, stdErrs
}

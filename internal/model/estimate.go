package model

import "time"

// VolatilityEstimate is an annualized volatility tagged with the inputs it
// was computed from. Sigma is always >= 0 and derived strictly from the
// Window observations preceding ValuationDate.
type VolatilityEstimate struct {
	Sigma         float64
	ValuationDate time.Time
	Window        int
	Dt            float64
}

// PriceEstimate is the result of one pricing call: the mean discounted
// payoff plus convergence diagnostics. It is created fresh per call and
// never mutated after return.
type PriceEstimate struct {
	Value  float64
	StdErr float64
	Paths  int
	Steps  int
	Window int
	Sigma  float64
	Rate   float64
}

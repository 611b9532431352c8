// Package payoff maps simulated price paths to monetary payoffs at maturity.
// The pricing engine depends only on the Evaluator interface and is agnostic
// to which contract structure is supplied.
package payoff

import (
	"math"

	"CertSentinel/internal/model"
)

// Evaluator computes the payoff of a single simulated path. Implementations
// must be pure: the engine calls Evaluate concurrently, once per path.
type Evaluator interface {
	Evaluate(path []float64) float64
	Name() string
}

// VanillaCall pays max(S_T - Strike, 0) on the terminal price.
type VanillaCall struct {
	Strike float64
}

func (v VanillaCall) Evaluate(path []float64) float64 {
	return math.Max(path[len(path)-1]-v.Strike, 0)
}

func (v VanillaCall) Name() string { return "vanilla_call" }

// VanillaPut pays max(Strike - S_T, 0) on the terminal price.
type VanillaPut struct {
	Strike float64
}

func (v VanillaPut) Evaluate(path []float64) float64 {
	return math.Max(v.Strike-path[len(path)-1], 0)
}

func (v VanillaPut) Name() string { return "vanilla_put" }

// BonusCertificate is the barrier variant of the outperformance bonus
// certificate: as long as the path minimum stays above the barrier, the
// holder receives at least the denomination, participating in upside beyond
// the initial fixing; once the barrier is breached the note tracks the index.
type BonusCertificate struct {
	Terms model.CertificateTerms
}

func (b BonusCertificate) Evaluate(path []float64) float64 {
	low := path[0]
	for _, s := range path[1:] {
		if s < low {
			low = s
		}
	}
	terminal := path[len(path)-1]
	ratio := terminal / b.Terms.InitialFixing
	if low > b.Terms.Barrier {
		bonus := b.Terms.Denomination * (1 + b.Terms.Participation*(ratio-1))
		return math.Max(b.Terms.Denomination, bonus)
	}
	return b.Terms.Denomination * ratio
}

func (b BonusCertificate) Name() string { return "bonus_certificate" }

// Outperformance is the barrier-free variant: participation applies whenever
// the terminal price is at or above the initial fixing, otherwise the note
// tracks the index.
type Outperformance struct {
	Terms model.CertificateTerms
}

func (o Outperformance) Evaluate(path []float64) float64 {
	terminal := path[len(path)-1]
	ratio := terminal / o.Terms.InitialFixing
	if terminal >= o.Terms.InitialFixing {
		return o.Terms.Denomination * (1 + o.Terms.Participation*(ratio-1))
	}
	return o.Terms.Denomination * ratio
}

func (o Outperformance) Name() string { return "outperformance" }

package recorder

import "time"

// ValuationRecord holds one completed pricing run. The engine itself never
// persists anything; recording is a driver concern, and only final estimates
// are stored, never simulated paths.
type ValuationRecord struct {
	RecordedAt    time.Time // filled on read
	ValuationDate time.Time
	MaturityDate  time.Time
	Window        int
	Sigma         float64
	Rate          float64
	Steps         int
	Paths         int
	Antithetic    bool
	Payoff        string
	Value         float64
	StdErr        float64
	Trigger       string // "DAILY", "SWEEP", "COMMAND", "STARTUP"
}

// Recorder persists valuation history for later analysis.
type Recorder interface {
	RecordValuation(rec *ValuationRecord) error
	Recent(limit int) ([]ValuationRecord, error)
	Close() error
}

package rates

import (
	"errors"
	"sort"
	"time"

	"CertSentinel/internal/model"
)

var ErrNoRateAvailable = errors.New("no rate available at or before date")

// RateAt resolves the risk-free rate applicable on the given date: the exact
// curve entry when one exists, otherwise the most recent entry before it.
// Fails when the date precedes the first curve entry.
func RateAt(curve *model.RateCurve, date time.Time) (float64, error) {
	n := curve.Len()
	// First index whose date is after the lookup date.
	i := sort.Search(n, func(i int) bool {
		return curve.At(i).Date.After(date)
	})
	if i == 0 {
		return 0, ErrNoRateAvailable
	}
	return curve.At(i - 1).Rate, nil
}

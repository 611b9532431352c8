package model

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrEmptySeries      = errors.New("series is empty")
	ErrNonPositivePrice = errors.New("price must be positive")
	ErrUnsortedDates    = errors.New("dates must be strictly increasing")
)

// PricePoint is one (date, adjusted close) observation.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries holds the historical adjusted-close series for the underlying
// index. It is immutable after construction; estimators hold a read-only
// reference and never copy or modify it.
type PriceSeries struct {
	points []PricePoint
}

// NewPriceSeries validates and wraps a slice of observations. Dates must be
// strictly increasing and every close must be positive.
func NewPriceSeries(points []PricePoint) (*PriceSeries, error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}
	for i, p := range points {
		if p.Close <= 0 {
			return nil, ErrNonPositivePrice
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			return nil, ErrUnsortedDates
		}
	}
	owned := make([]PricePoint, len(points))
	copy(owned, points)
	return &PriceSeries{points: owned}, nil
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.points) }

// At returns the observation at index i.
func (s *PriceSeries) At(i int) PricePoint { return s.points[i] }

// Last returns the most recent observation.
func (s *PriceSeries) Last() PricePoint { return s.points[len(s.points)-1] }

// IndexOf locates the observation for the given date.
func (s *PriceSeries) IndexOf(date time.Time) (int, bool) {
	i := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(date)
	})
	if i < len(s.points) && s.points[i].Date.Equal(date) {
		return i, true
	}
	return 0, false
}

// RatePoint is one (date, annualized rate) entry of the yield curve.
// Rate is a decimal, not a percentage.
type RatePoint struct {
	Date time.Time
	Rate float64
}

// RateCurve holds the risk-free rate series. The curve may have gaps;
// lookups fall back to the most recent prior entry.
type RateCurve struct {
	points []RatePoint
}

// NewRateCurve validates and wraps a slice of rate entries. Dates must be
// strictly increasing; negative rates are allowed.
func NewRateCurve(points []RatePoint) (*RateCurve, error) {
	if len(points) == 0 {
		return nil, ErrEmptySeries
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			return nil, ErrUnsortedDates
		}
	}
	owned := make([]RatePoint, len(points))
	copy(owned, points)
	return &RateCurve{points: owned}, nil
}

// Len returns the number of curve entries.
func (c *RateCurve) Len() int { return len(c.points) }

// At returns the curve entry at index i.
func (c *RateCurve) At(i int) RatePoint { return c.points[i] }

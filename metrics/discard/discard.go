// Package discard provides a no-op metrics backend.
package discard

import "github.com/go-kit/outcome/metrics"

type counter struct{}

// NewCounter returns a new no-op counter.
func NewCounter() metrics.Counter { return counter{} }

func (c counter) With(...string) metrics.Counter { return c }
func (c counter) Add(float64)                    {}

type histogram struct{}

// NewHistogram returns a new no-op histogram.
func NewHistogram() metrics.Histogram { return histogram{} }

func (h histogram) With(...string) metrics.Histogram { return h }
func (h histogram) Observe(float64)                  {}

// NewSet returns a metrics.Set that records nothing.
func NewSet() metrics.Set {
	return metrics.Set{Requests: NewCounter(), Duration: NewHistogram()}
}

// Fill returns s with every unset metric replaced by a no-op one.
func Fill(s metrics.Set) metrics.Set {
	if s.Requests == nil {
		s.Requests = NewCounter()
	}
	if s.Duration == nil {
		s.Duration = NewHistogram()
	}
	return s
}

// Package prometheus provides a Prometheus backend for metrics.
//
// The With/keyvals mechanism of establishing dimensionality maps directly
// to Prometheus' concept of labels. Prometheus labels must be predeclared when
// constructing a metric, so extra keyvals are silently dropped, and
// unspecified label keys get a value of metrics.UnknownValue.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-kit/outcome/metrics"
)

// Provider constructs and registers Prometheus metrics.
type Provider struct {
	registerer prometheus.Registerer
}

// NewProvider returns a new, empty provider.
func NewProvider(options ...ProviderOption) *Provider {
	p := &Provider{
		registerer: prometheus.DefaultRegisterer,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// ProviderOption modifies the behavior of the provider.
type ProviderOption func(*Provider)

// WithRegisterer changes the registry into which Prometheus metrics are
// registered. By default, the prometheus.DefaultRegisterer is used.
func WithRegisterer(r prometheus.Registerer) ProviderOption {
	return func(p *Provider) { p.registerer = r }
}

// NewCounter constructs a prometheus.CounterVec, registers it via the
// Provider's configured Registerer, and returns a Counter wrapping it.
func (p *Provider) NewCounter(id metrics.Identifier) (metrics.Counter, error) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: id.Namespace,
		Subsystem: id.Subsystem,
		Name:      id.Name,
		Help:      id.Help,
	}, id.Labels)
	if err := p.registerer.Register(c); err != nil {
		return nil, err
	}
	return &counter{
		counter: c,
		keyvals: unknownValues(id.Labels),
	}, nil
}

// NewHistogram constructs a prometheus.HistogramVec, registers it via the
// Provider's configured Registerer, and returns a Histogram wrapping it.
// Nil buckets mean prometheus.DefBuckets.
func (p *Provider) NewHistogram(id metrics.Identifier) (metrics.Histogram, error) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: id.Namespace,
		Subsystem: id.Subsystem,
		Name:      id.Name,
		Help:      id.Help,
		Buckets:   id.Buckets,
	}, id.Labels)
	if err := p.registerer.Register(h); err != nil {
		return nil, err
	}
	return &histogram{
		histogram: h,
		keyvals:   unknownValues(id.Labels),
	}, nil
}

// NewSet registers the request counter and duration histogram under
// namespace and returns them as a metrics.Set.
func (p *Provider) NewSet(namespace string) (metrics.Set, error) {
	labels := []string{metrics.LabelMethod, metrics.LabelOutcome}
	requests, err := p.NewCounter(metrics.Identifier{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Requests sent, by method and outcome.",
		Labels:    labels,
	})
	if err != nil {
		return metrics.Set{}, err
	}
	duration, err := p.NewHistogram(metrics.Identifier{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Request duration in seconds, by method and outcome.",
		Labels:    labels,
	})
	if err != nil {
		return metrics.Set{}, err
	}
	return metrics.Set{Requests: requests, Duration: duration}, nil
}

func unknownValues(labels []string) map[string]string {
	keyvals := map[string]string{}
	for _, label := range labels {
		keyvals[label] = metrics.UnknownValue
	}
	return keyvals
}

type counter struct {
	counter *prometheus.CounterVec
	keyvals map[string]string
}

func (c *counter) With(keyvals ...string) metrics.Counter {
	return &counter{
		counter: c.counter,
		keyvals: metrics.Merge(c.keyvals, keyvals...),
	}
}

func (c *counter) Add(value float64) {
	c.counter.With(prometheus.Labels(c.keyvals)).Add(value)
}

type histogram struct {
	histogram *prometheus.HistogramVec
	keyvals   map[string]string
}

func (h *histogram) With(keyvals ...string) metrics.Histogram {
	return &histogram{
		histogram: h.histogram,
		keyvals:   metrics.Merge(h.keyvals, keyvals...),
	}
}

func (h *histogram) Observe(value float64) {
	h.histogram.With(prometheus.Labels(h.keyvals)).Observe(value)
}

package metrics

// UnknownValue is the value of a predeclared label that was never set.
const UnknownValue = "unknown"

// Counter describes a metric that accumulates values monotonically.
// An example of a counter is the number of requests sent.
type Counter interface {
	With(keyvals ...string) Counter
	Add(delta float64)
}

// Histogram describes a metric that takes repeated observations of the same
// kind of thing. An example of a histogram is request latency.
type Histogram interface {
	With(keyvals ...string) Histogram
	Observe(value float64)
}

// Identifier names a metric. Backends may use different fields.
type Identifier struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string

	// Buckets is used for histograms only.
	Buckets []float64

	// Labels must all be predeclared when metrics are constructed.
	Labels []string
}

// Set is the instrumentation recorded for every request: a count of
// requests and their duration in seconds, both labeled by method and
// outcome.
type Set struct {
	Requests Counter
	Duration Histogram
}

// Label keys used by Set.
const (
	LabelMethod  = "method"
	LabelOutcome = "outcome"
)

// Observe records one finished request. Both metrics must be set; see
// discard.Fill.
func (s Set) Observe(method, outcome string, seconds float64) {
	s.Requests.With(LabelMethod, method, LabelOutcome, outcome).Add(1)
	s.Duration.With(LabelMethod, method, LabelOutcome, outcome).Observe(seconds)
}

// Merge the keyvals into the original map and return a new map. Keys that
// aren't present in the original map are dropped. A trailing key without a
// value gets UnknownValue.
func Merge(original map[string]string, keyvals ...string) map[string]string {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, UnknownValue)
	}
	result := make(map[string]string, len(original))
	for k, v := range original {
		result[k] = v
	}
	for i := 0; i < len(keyvals); i += 2 {
		if _, ok := result[keyvals[i]]; ok {
			result[keyvals[i]] = keyvals[i+1]
		}
	}
	return result
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-logfmt/logfmt"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/go-kit/outcome/defect"
)

// printOutcome writes one logfmt record describing r, followed by the body
// as indented JSON on success. It reports whether r was a success.
func printOutcome(w io.Writer, path string, r outcome) bool {
	enc := logfmt.NewEncoder(w)
	if v, ok := r.Right(); ok {
		enc.EncodeKeyvals("path", path, "outcome", "ok")
		enc.EndRecord()
		if v != nil {
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				b = []byte(fmt.Sprintf("%v", v))
			}
			fmt.Fprintf(w, "%s\n", b)
		}
		return true
	}

	d, _ := r.Left()
	keyvals := []interface{}{"path", path, "outcome", d.Kind}
	if d.Kind == defect.BadResponse {
		keyvals = append(keyvals, "status", d.StatusCode)
		if body, ok := d.DecodedError(); ok && body != nil {
			if b, err := json.Marshal(body); err == nil {
				keyvals = append(keyvals, "error_body", string(b))
			}
		}
	}
	keyvals = append(keyvals, "err", d.Diagnostic.Error())
	enc.EncodeKeyvals(keyvals...)
	enc.EndRecord()
	return false
}

// printMetrics writes one logfmt record per series in registry.
func printMetrics(w io.Writer, registry *stdprometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	enc := logfmt.NewEncoder(w)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			keyvals := []interface{}{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				keyvals = append(keyvals, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				keyvals = append(keyvals, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				keyvals = append(keyvals, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			}
			if err := enc.EncodeKeyvals(keyvals...); err != nil {
				return err
			}
			if err := enc.EndRecord(); err != nil {
				return err
			}
		}
	}
	return nil
}

func kindNames() string {
	names := make([]string, 0, len(defect.Kinds()))
	for _, k := range defect.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// printStats writes the store request counters gathered from reg, one
// series per line, followed by the total request time of each operation.
func printStats(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s%s %g\n",
					mf.GetName(), labels(m), m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s%s count=%d sum=%.3fs\n",
					mf.GetName(), labels(m),
					h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	pairs := m.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	s := make([]string, len(pairs))
	for i, p := range pairs {
		s[i] = p.GetName() + "=" + p.GetValue()
	}
	return "{" + strings.Join(s, ",") + "}"
}

package instrument

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"lesiw.io/cosfs/objstore"
)

// Operation results, as recorded in the result label.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics holds the Prometheus collectors for store requests.
type Metrics struct {
	ops     *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics registers the store collectors on reg.
//
// Registering on a registry that already holds them reuses the existing
// collectors, so several clients may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cosfs",
		Subsystem: "store",
		Name:      "ops_total",
		Help:      "Total number of store requests by result.",
	}, []string{"op", "result"})
	bytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cosfs",
		Subsystem: "store",
		Name:      "bytes_total",
		Help:      "Total bytes uploaded or downloaded by store requests.",
	}, []string{"op"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cosfs",
		Subsystem: "store",
		Name:      "op_duration_seconds",
		Help:      "Histogram of store request durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	var err error
	m := new(Metrics)
	if m.ops, err = register(reg, ops); err != nil {
		return nil, err
	}
	if m.bytes, err = register(reg, bytes); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](
	reg prometheus.Registerer, c C,
) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// Observe records one request of op that moved n bytes.
func (m *Metrics) Observe(op string, n int64, err error, dur time.Duration) {
	m.ops.WithLabelValues(op, result(err)).Inc()
	m.latency.WithLabelValues(op).Observe(dur.Seconds())
	m.addBytes(op, n)
}

func (m *Metrics) addBytes(op string, n int64) {
	if n > 0 {
		m.bytes.WithLabelValues(op).Add(float64(n))
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case objstore.IsNotFound(err):
		return ResultNotFound
	}
	return ResultError
}

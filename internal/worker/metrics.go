// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "funcshell",
		Name:      "invocations_total",
		Help:      "Function invocations by function name and status.",
	}, []string{"function", "status"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "funcshell",
		Name:      "invocation_duration_seconds",
		Help:      "Wall-clock duration of function invocations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"function"})

	poolCheckedOut = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "funcshell",
		Name:      "pool_checkouts_in_flight",
		Help:      "Managers currently checked out of the pool.",
	})
)

func observeInvocation(function string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	invocationsTotal.WithLabelValues(function, status).Inc()
	invocationDuration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// Copyright 2022 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exports equilibrium search progress to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/someonegg/aceei"
)

// Observer implements aceei.Observer.
type Observer struct {
	Iterations      prometheus.Counter
	Converged       prometheus.Counter
	Residual        prometheus.Gauge
	ResidualHist    prometheus.Histogram
	Candidates      prometheus.Gauge
	OptimizeSeconds *prometheus.HistogramVec
}

var _ aceei.Observer = (*Observer)(nil)

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aceei",
			Name:      "iterations_total",
			Help:      "Price-adjustment iterations run.",
		}),
		Converged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aceei",
			Name:      "converged_total",
			Help:      "Searches that cleared the market.",
		}),
		Residual: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aceei",
			Name:      "residual",
			Help:      "Clipped excess demand norm of the last iteration.",
		}),
		ResidualHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aceei",
			Name:      "residual_norm",
			Help:      "Distribution of clipped excess demand norms.",
			Buckets:   []float64{0, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
		Candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aceei",
			Name:      "candidate_budgets",
			Help:      "Candidate budgets over all agents in the last iteration.",
		}),
		OptimizeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aceei",
			Name:      "optimize_seconds",
			Help:      "Duration of allocation optimizer calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		o.Iterations, o.Converged, o.Residual, o.ResidualHist, o.Candidates, o.OptimizeSeconds,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) ObserveIteration(s aceei.IterationStats) {
	o.Iterations.Inc()
	o.Residual.Set(s.Norm)
	o.ResidualHist.Observe(s.Norm)
	o.Candidates.Set(float64(s.Candidates))
	if s.Converged {
		o.Converged.Inc()
	}
}

func (o *Observer) ObserveOptimize(seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.OptimizeSeconds.WithLabelValues(result).Observe(seconds)
}

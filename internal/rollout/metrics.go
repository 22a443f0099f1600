// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "deployec2_rollout"

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Collector is a prometheus.Collector that collects metrics about
// rollouts.
type Collector struct {
	invocations          *prometheus.CounterVec
	dispatchAttempts     *prometheus.CounterVec
	pollAttempts         *prometheus.CounterVec
	pollDuration         prometheus.Histogram
	lifecycleCompletions *prometheus.CounterVec
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invocations_total",
				Help:      "The number of rollout invocations by outcome.",
			}, []string{"outcome"},
		),
		dispatchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dispatch_attempts_total",
				Help:      "The number of attempts to submit the restart command.",
			}, []string{"result"},
		),
		pollAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "poll_attempts_total",
				Help:      "The number of attempts to wait for the command on every host.",
			}, []string{"result"},
		),
		pollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "command_execution_seconds",
				Help:      "The time spent waiting for the command to execute on every host.",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		lifecycleCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "lifecycle_completions_total",
				Help:      "The number of lifecycle actions completed per host.",
			}, []string{"result"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.invocations.Describe(ch)
	c.dispatchAttempts.Describe(ch)
	c.pollAttempts.Describe(ch)
	c.pollDuration.Describe(ch)
	c.lifecycleCompletions.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.invocations.Collect(ch)
	c.dispatchAttempts.Collect(ch)
	c.pollAttempts.Collect(ch)
	c.pollDuration.Collect(ch)
	c.lifecycleCompletions.Collect(ch)
}

func (c *Collector) observeInvocation(outcome Outcome) {
	c.invocations.WithLabelValues(string(outcome)).Inc()
}

func (c *Collector) observeDispatchAttempt(err error) {
	c.dispatchAttempts.WithLabelValues(result(err)).Inc()
}

func (c *Collector) observePollAttempt(err error) {
	c.pollAttempts.WithLabelValues(result(err)).Inc()
}

func (c *Collector) observeExecution(elapsed time.Duration) {
	c.pollDuration.Observe(elapsed.Seconds())
}

func (c *Collector) observeLifecycleCompletion(err error) {
	c.lifecycleCompletions.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return resultFailure
	}
	return resultSuccess
}

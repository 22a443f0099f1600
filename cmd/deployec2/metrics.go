// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsJob = "deployec2"

// pushMetrics replaces the metrics of this instance on the Pushgateway.
func pushMetrics(ctx context.Context, url, instanceID string, collector prometheus.Collector) error {
	err := push.New(url, metricsJob).
		Grouping("instance", instanceID).
		Collector(collector).
		PushContext(ctx)
	return errors.Annotatef(err, "pushing metrics to %q", url)
}

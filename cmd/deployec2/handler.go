// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/rs/xid"

	"github.com/pwsia/deployec2/internal/config"
	"github.com/pwsia/deployec2/internal/provider/ec2"
	"github.com/pwsia/deployec2/internal/rollout"
)

// ServiceFactory builds the remote services used by one invocation.
type ServiceFactory func(ctx context.Context, cfg config.Config) (rollout.CommandService, rollout.FleetManager, error)

// TracerProviderFactory builds the tracer provider used by one invocation.
type TracerProviderFactory func(ctx context.Context, endpoint string, insecure bool, instanceID string) (TracerProvider, error)

// Handler serves rollout invocations. A Handler outlives its invocations
// when the Lambda runtime reuses the process, so its metrics accumulate.
type Handler struct {
	instanceID string
	metrics    *rollout.Collector

	mu             sync.Mutex
	tracerProvider TracerProvider

	newServices       ServiceFactory
	newTracerProvider TracerProviderFactory
	clock             clock.Clock
	output            io.Writer
}

// NewHandler returns a Handler talking to AWS.
func NewHandler() *Handler {
	return &Handler{
		instanceID:        xid.New().String(),
		metrics:           rollout.NewMetricsCollector(),
		newServices:       newAWSServices,
		newTracerProvider: newTracerProvider,
		clock:             clock.WallClock,
		output:            os.Stderr,
	}
}

// Handle runs one rollout for the SNS notification in payload. It reports
// true once the rollout completed or was skipped.
func (h *Handler) Handle(ctx context.Context, payload json.RawMessage) (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return false, errors.Trace(err)
	}

	id := invocationID(ctx)
	loggingContext, err := newLoggingContext(id, cfg.LoggingConfig, h.output)
	if err != nil {
		return false, errors.Trace(err)
	}
	logger := loggingContext.GetLogger("deployec2.cmd")

	commands, fleet, err := h.newServices(ctx, cfg)
	if err != nil {
		logger.Errorf("creating services: %v", err)
		return false, errors.Trace(err)
	}

	tp, err := h.tracer(ctx, cfg)
	if err != nil {
		logger.Errorf("creating tracer provider: %v", err)
		return false, errors.Trace(err)
	}
	// The process may be frozen between invocations, so spans are flushed
	// before returning.
	defer func() {
		if err := tp.ForceFlush(context.WithoutCancel(ctx)); err != nil {
			logger.Warningf("flushing spans: %v", err)
		}
	}()

	orchestrator, err := rollout.NewOrchestrator(rollout.Config{
		Commands:        commands,
		Fleet:           fleet,
		Production:      cfg.Production,
		ScriptPath:      cfg.ScriptPath,
		DeleteStateFlag: cfg.DeleteStateFlag,
		MaxAttempts:     cfg.MaxAttempts,
		RetryDelay:      cfg.RetryDelay,
		SettleDelay:     cfg.SettleDelay,
		IndexDelay:      cfg.IndexDelay,
		Clock:           h.clock,
		Logger:          loggingContext.GetLogger("deployec2.rollout"),
		Metrics:         h.metrics,
		Tracer:          tp.Tracer(tracerName),
	})
	if err != nil {
		return false, errors.Trace(err)
	}

	result, err := orchestrator.Run(ctx, payload)
	if cfg.PushgatewayURL != "" {
		if err := pushMetrics(context.WithoutCancel(ctx), cfg.PushgatewayURL, h.instanceID, h.metrics); err != nil {
			logger.Warningf("%v", err)
		}
	}
	if err != nil {
		logger.Errorf("rollout failed: %v", err)
		return false, errors.Trace(err)
	}
	logger.Infof("rollout %s on %d instance(s)", result.Outcome, len(result.Targets))
	return true, nil
}

// tracer returns the tracer provider shared by every invocation of the
// handler, creating it on first use. A failed creation is retried by the
// next invocation.
func (h *Handler) tracer(ctx context.Context, cfg config.Config) (TracerProvider, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tracerProvider != nil {
		return h.tracerProvider, nil
	}
	tp, err := h.newTracerProvider(ctx, cfg.OTLPEndpoint, cfg.OTLPInsecure, h.instanceID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	h.tracerProvider = tp
	return tp, nil
}

// Close flushes and stops the tracer provider, if one was created.
func (h *Handler) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tracerProvider == nil {
		return nil
	}
	err := h.tracerProvider.Shutdown(ctx)
	h.tracerProvider = nil
	return errors.Trace(err)
}

// invocationID identifies the invocation in log lines: the Lambda request
// ID when there is one, a fresh ID otherwise.
func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return xid.New().String()
}

func newAWSServices(ctx context.Context, cfg config.Config) (rollout.CommandService, rollout.FleetManager, error) {
	awsCfg, err := ec2.LoadConfig(ctx, cfg.ClientConfig())
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	commands := ec2.NewCommandService(ec2.NewSSMClient(awsCfg, cfg.Endpoint), cfg.CommandConfig())
	fleet := ec2.NewLifecycleService(ec2.NewAutoScalingClient(awsCfg, cfg.Endpoint))
	return commands, fleet, nil
}

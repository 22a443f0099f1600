// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"

	"github.com/juju/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pwsia/deployec2/internal/fleet"
	"github.com/pwsia/deployec2/internal/lifecycle"
)

// Outcome describes how an invocation ended.
type Outcome string

const (
	// OutcomeCompleted means the command ran on every target host.
	OutcomeCompleted Outcome = "completed"
	// OutcomeSkipped means the event was not one the rollout acts upon.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the invocation returned an error.
	OutcomeFailed Outcome = "failed"
)

// Result is returned by a successful Run.
type Result struct {
	Outcome   Outcome
	Event     lifecycle.Event
	Targets   []string
	Command   string
	CommandID string
	Report    Report
}

// Orchestrator runs the restart command on the hosts affected by a lifecycle
// notification and always releases the lifecycle hold it was given.
type Orchestrator struct {
	cfg Config
}

// NewOrchestrator returns an Orchestrator for the given config.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Run handles a single notification payload. The lifecycle hold named by the
// notification is released exactly once on every path after the payload was
// classified.
func (o *Orchestrator) Run(ctx context.Context, payload []byte) (result Result, err error) {
	ctx, span := o.cfg.Tracer.Start(ctx, "rollout.Run",
		trace.WithAttributes(attribute.Bool("production", o.cfg.Production)))
	defer func() {
		if err != nil {
			result.Outcome = OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("outcome", string(result.Outcome)))
		o.cfg.Metrics.observeInvocation(result.Outcome)
		span.End()
	}()

	logger := o.cfg.Logger
	logger.Infof("[start] rollout")

	event, err := lifecycle.ParseNotification(payload)
	if err != nil {
		return result, errors.Trace(err)
	}
	result.Event = event
	logger.Debugf("lifecycle event: %+v", event)
	span.SetAttributes(
		attribute.String("origin", string(event.Origin)),
		attribute.String("group", event.AutoScalingGroupName),
	)

	targets, err := o.resolve(ctx, event)
	result.Targets = targets
	release := &guard{
		fleet:   o.cfg.Fleet,
		event:   event,
		targets: targets,
		logger:  logger,
		metrics: o.cfg.Metrics,
	}
	if err != nil {
		release.Release(ctx)
		return result, errors.Trace(err)
	}

	if o.cfg.Production && !event.IsWarmPoolActivation() {
		release.Release(ctx)
		logger.Infof("[skip] ignoring event that did not come from the warm pool")
		result.Outcome = OutcomeSkipped
		return result, nil
	}

	if len(targets) == 0 {
		logger.Infof("no managed instances to run the command on")
		release.Release(ctx)
		result.Outcome = OutcomeCompleted
		return result, nil
	}

	if o.cfg.Production {
		logger.Infof("waiting %v for instances to settle", o.cfg.SettleDelay)
		wait(ctx, o.cfg.Clock, o.cfg.SettleDelay)
	}

	result.Command = BuildCommand(o.cfg.ScriptPath, o.cfg.DeleteStateFlag, o.cfg.Production)

	policy := retryPolicy{
		attempts: o.cfg.MaxAttempts,
		delay:    o.cfg.RetryDelay,
		clock:    o.cfg.Clock,
	}

	stageCtx, stageSpan := o.cfg.Tracer.Start(ctx, "rollout.Dispatch")
	result.CommandID, err = (&dispatcher{
		commands: o.cfg.Commands,
		guard:    release,
		policy:   policy,
		logger:   logger,
		metrics:  o.cfg.Metrics,
	}).Dispatch(stageCtx, targets, result.Command)
	stageSpan.End()
	if err != nil {
		return result, errors.Trace(err)
	}

	stageCtx, stageSpan = o.cfg.Tracer.Start(ctx, "rollout.Poll",
		trace.WithAttributes(attribute.String("command_id", result.CommandID)))
	err = (&poller{
		commands:   o.cfg.Commands,
		guard:      release,
		policy:     policy,
		indexDelay: o.cfg.IndexDelay,
		logger:     logger,
		metrics:    o.cfg.Metrics,
	}).Poll(stageCtx, result.CommandID, targets)
	stageSpan.End()
	if err != nil {
		return result, errors.Trace(err)
	}

	result.Report = (&collector{
		commands: o.cfg.Commands,
		logger:   logger,
	}).Collect(ctx, result.CommandID)

	release.Release(ctx)

	logger.Infof("[end] rollout")
	result.Outcome = OutcomeCompleted
	return result, nil
}

func (o *Orchestrator) resolve(ctx context.Context, event lifecycle.Event) ([]string, error) {
	ctx, span := o.cfg.Tracer.Start(ctx, "rollout.Resolve")
	defer span.End()

	targets, err := fleet.Resolve(ctx, o.cfg.Commands, event)
	if err != nil {
		return nil, errors.Trace(err)
	}
	span.SetAttributes(attribute.Int("targets", len(targets)))
	return targets, nil
}

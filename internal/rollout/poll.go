// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/pwsia/deployec2/core/remotecommand"
)

// poller waits for the command to execute on every target host.
type poller struct {
	commands   CommandService
	guard      *guard
	policy     retryPolicy
	indexDelay time.Duration
	logger     loggo.Logger
	metrics    *Collector
}

// Poll waits, in target order, for the command to execute on each host.
// Every attempt starts again from the first host. Once the budget is spent
// the lifecycle hold is released and an ExhaustedError is returned.
func (p *poller) Poll(ctx context.Context, commandID string, targets []string) error {
	// The command may not be queryable right after it was submitted.
	wait(ctx, p.policy.clock, p.indexDelay)
	p.logger.Infof("waiting for command %q to execute", commandID)

	attempts, err := p.policy.call(ctx, p.logger, "waiting for command", remotecommand.CodeResourceNotReady, func() error {
		start := p.policy.clock.Now()
		for _, id := range targets {
			if err := p.commands.WaitForCompletion(ctx, commandID, id); err != nil {
				p.metrics.observePollAttempt(err)
				return errors.Annotatef(err, "instance %q", id)
			}
		}
		elapsed := p.policy.clock.Now().Sub(start)
		p.metrics.observePollAttempt(nil)
		p.metrics.observeExecution(elapsed)
		p.logger.Infof("done waiting for command execution, took %.2f seconds", elapsed.Seconds())
		return nil
	})
	if err != nil {
		return exhausted(ctx, p.guard, p.logger, StagePoll, attempts, err)
	}
	return nil
}

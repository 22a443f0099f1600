// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"
	"strings"

	"github.com/juju/loggo"

	"github.com/pwsia/deployec2/core/remotecommand"
)

// dispatcher submits the restart command to the target hosts.
type dispatcher struct {
	commands CommandService
	guard    *guard
	policy   retryPolicy
	logger   loggo.Logger
	metrics  *Collector
}

// Dispatch submits command to every target host as one request and returns
// the command ID. Hosts that are not registered yet with the command service
// are expected while the fleet warms up, so those failures are retried
// quietly. Once the budget is spent the lifecycle hold is released and an
// ExhaustedError is returned.
func (d *dispatcher) Dispatch(ctx context.Context, targets []string, command string) (string, error) {
	d.logger.Infof("running command %q on instances %q", command, strings.Join(targets, ", "))

	var commandID string
	attempts, err := d.policy.call(ctx, d.logger, "sending command", remotecommand.CodeInvalidInstanceID, func() error {
		id, err := d.commands.SendCommand(ctx, targets, command)
		d.metrics.observeDispatchAttempt(err)
		if err != nil {
			return err
		}
		commandID = id
		return nil
	})
	if err != nil {
		return "", exhausted(ctx, d.guard, d.logger, StageDispatch, attempts, err)
	}

	d.logger.Infof("done sending command %q after %d attempt(s)", commandID, attempts)
	return commandID, nil
}

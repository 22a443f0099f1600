// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"

	"github.com/juju/loggo"
)

// HostResult is the output of the command on one host.
type HostResult struct {
	InstanceID  string
	OutputLines []string
}

// Report holds one HostResult per invocation of the command.
type Report []HostResult

// collector fetches and logs the output of a finished command.
type collector struct {
	commands CommandService
	logger   loggo.Logger
}

// Collect logs one result block per host. The report is informational only:
// a failure to fetch it is logged and an empty report returned.
func (c *collector) Collect(ctx context.Context, commandID string) Report {
	invocations, err := c.commands.ListInvocations(ctx, commandID)
	if err != nil {
		c.logger.Warningf("fetching output of command %q: %v", commandID, err)
		return nil
	}

	report := make(Report, 0, len(invocations))
	for i, invocation := range invocations {
		lines := SplitOutput(invocation.Output)
		c.logger.Infof("result of %dth command (%s) =====", i, invocation.InstanceID)
		for _, line := range lines {
			c.logger.Infof("%s", line)
		}
		c.logger.Infof("done result of %dth command =====", i)

		report = append(report, HostResult{
			InstanceID:  invocation.InstanceID,
			OutputLines: lines,
		})
	}
	return report
}

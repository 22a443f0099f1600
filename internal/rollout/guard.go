// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"

	"github.com/juju/loggo"

	"github.com/pwsia/deployec2/core/remotecommand"
	"github.com/pwsia/deployec2/internal/lifecycle"
)

// guard releases the target hosts from the lifecycle transition that
// triggered the rollout.
type guard struct {
	fleet   FleetManager
	event   lifecycle.Event
	targets []string
	logger  loggo.Logger
	metrics *Collector
}

// Release tells the fleet manager that every target host may continue its
// transition. Failures are logged and swallowed so that they never hide the
// error that led here; the remaining hosts are still released.
func (g *guard) Release(ctx context.Context) {
	if !g.event.HasToken() {
		return
	}
	// The hold must be released even when the invocation was cancelled.
	ctx = context.WithoutCancel(ctx)

	g.logger.Infof("completing lifecycle action %q for %d instance(s)", g.event.LifecycleHookName, len(g.targets))
	for _, id := range g.targets {
		err := g.fleet.CompleteLifecycleAction(ctx, remotecommand.LifecycleCompletion{
			InstanceID: id,
			Token:      g.event.LifecycleActionToken,
			GroupName:  g.event.AutoScalingGroupName,
			HookName:   g.event.LifecycleHookName,
			Result:     remotecommand.ResultContinue,
		})
		g.metrics.observeLifecycleCompletion(err)
		if err != nil {
			g.logger.Warningf("completing lifecycle action for %q: %v", id, err)
		}
	}
	g.logger.Infof("done completing lifecycle action")
}

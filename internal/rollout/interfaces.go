// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"context"

	"github.com/pwsia/deployec2/core/remotecommand"
	"github.com/pwsia/deployec2/internal/fleet"
)

// CommandService runs shell commands on managed hosts and reports their
// completion and output.
type CommandService interface {
	fleet.HostLister

	// SendCommand submits command for every host in hostIDs as a single
	// request and returns the ID correlating the per-host invocations.
	SendCommand(ctx context.Context, hostIDs []string, command string) (string, error)

	// WaitForCompletion blocks until the command has executed on the host.
	// A command that is still running when the wait gives up is reported
	// with the remotecommand.CodeResourceNotReady code.
	WaitForCompletion(ctx context.Context, commandID, hostID string) error

	// ListInvocations returns the per-host output of the command.
	ListInvocations(ctx context.Context, commandID string) ([]remotecommand.Invocation, error)
}

// FleetManager owns the lifecycle transitions of the group's hosts.
type FleetManager interface {
	// CompleteLifecycleAction releases a host from its pending transition.
	CompleteLifecycleAction(ctx context.Context, completion remotecommand.LifecycleCompletion) error
}

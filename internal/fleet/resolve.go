// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package fleet resolves the hosts a lifecycle event should be acted upon.
package fleet

import (
	"context"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/pwsia/deployec2/internal/lifecycle"
)

// HostLister returns the hosts currently managed by the remote command
// service.
type HostLister interface {
	ListManagedHosts(ctx context.Context) ([]string, error)
}

// Resolve returns the ordered target set for the event. An event naming a
// host targets that host alone, otherwise every managed host is targeted.
// An empty fleet yields an empty target set.
func Resolve(ctx context.Context, hosts HostLister, event lifecycle.Event) ([]string, error) {
	if event.InstanceID != "" {
		return []string{event.InstanceID}, nil
	}

	managed, err := hosts.ListManagedHosts(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "listing managed hosts")
	}

	seen := set.NewStrings()
	targets := make([]string, 0, len(managed))
	for _, id := range managed {
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		targets = append(targets, id)
	}
	return targets, nil
}

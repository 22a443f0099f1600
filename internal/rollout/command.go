// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package rollout

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// BuildCommand returns the shell command run on every target host. In
// production the delete-state flag is appended so that the host restores its
// database from the replica instead of resuming from a stale local copy.
func BuildCommand(scriptPath, deleteStateFlag string, production bool) string {
	args := []string{scriptPath}
	if production && deleteStateFlag != "" {
		args = append(args, deleteStateFlag)
	}
	return strings.TrimSpace(shellquote.Join(args...))
}

// SplitOutput breaks captured output into lines on carriage returns, which
// shell tools use to redraw progress.
func SplitOutput(output string) []string {
	return strings.Split(output, "\r")
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package remotecommand holds the vocabulary shared between the rollout
// orchestrator and the services that run shell commands on fleet hosts and
// release their lifecycle holds.
package remotecommand

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	// CodeInvalidInstanceID is reported by the command service while a
	// freshly launched host has not registered with it yet.
	CodeInvalidInstanceID = "InvalidInstanceId"

	// CodeResourceNotReady is reported while a command has not reached a
	// terminal state on a host.
	CodeResourceNotReady = "ResourceNotReady"
)

// ResultContinue is the lifecycle action result that lets a pending
// transition proceed.
const ResultContinue = "CONTINUE"

// Invocation is the captured output of one command on one host.
type Invocation struct {
	InstanceID string
	// Output is the raw text captured by the first plugin of the command
	// document.
	Output string
}

// LifecycleCompletion describes the release of a single host from a
// pending lifecycle transition.
type LifecycleCompletion struct {
	InstanceID string
	Token      string
	GroupName  string
	HookName   string
	Result     string
}

// NotReadyError reports that a command has not finished on a host.
type NotReadyError struct {
	CommandID  string
	InstanceID string
	Err        error
}

// Error implements error.
func (e *NotReadyError) Error() string {
	msg := fmt.Sprintf("command %q not executed on %q", e.CommandID, e.InstanceID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause reported by the service, if any.
func (e *NotReadyError) Unwrap() error {
	return e.Err
}

// ErrorCode allows NotReadyError to be classified alongside API errors.
func (e *NotReadyError) ErrorCode() string {
	return CodeResourceNotReady
}

type codedError interface {
	ErrorCode() string
}

// ErrorCode returns the service error code carried anywhere in the chain of
// err, or the empty string when there is none.
func ErrorCode(err error) string {
	var coded codedError
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

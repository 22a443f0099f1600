// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
)

// LifecycleAction is a pending lifecycle transition of one instance.
type LifecycleAction struct {
	GroupName  string
	HookName   string
	InstanceID string
	Token      string
}

// AutoScalingServer implements an Auto Scaling simulator for use in
// testing. Completed actions are forgotten, so completing one twice fails
// as it does against the real service.
type AutoScalingServer struct {
	mu sync.Mutex

	pending   map[string]LifecycleAction
	completed []LifecycleAction
	results   []string
}

// NewAutoScalingServer returns an empty simulator.
func NewAutoScalingServer() *AutoScalingServer {
	srv := &AutoScalingServer{}
	srv.Reset()
	return srv
}

// Reset forgets every action.
func (a *AutoScalingServer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = make(map[string]LifecycleAction)
	a.completed = nil
	a.results = nil
}

// AddPendingAction holds an instance in a lifecycle transition.
func (a *AutoScalingServer) AddPendingAction(action LifecycleAction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[action.InstanceID] = action
}

// Completed returns the actions completed so far, in order.
func (a *AutoScalingServer) Completed() []LifecycleAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]LifecycleAction(nil), a.completed...)
}

// Results returns the action results passed so far, in order.
func (a *AutoScalingServer) Results() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.results...)
}

func (a *AutoScalingServer) CompleteLifecycleAction(
	ctx context.Context,
	input *autoscaling.CompleteLifecycleActionInput,
	opts ...func(*autoscaling.Options),
) (*autoscaling.CompleteLifecycleActionOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	instanceID := aws.ToString(input.InstanceId)
	action, ok := a.pending[instanceID]
	if !ok ||
		action.Token != aws.ToString(input.LifecycleActionToken) ||
		action.GroupName != aws.ToString(input.AutoScalingGroupName) ||
		action.HookName != aws.ToString(input.LifecycleHookName) {
		return nil, apiError("ValidationError", fmt.Sprintf(
			"No active Lifecycle Action found with instance ID %s", instanceID))
	}

	delete(a.pending, instanceID)
	a.completed = append(a.completed, action)
	a.results = append(a.results, aws.ToString(input.LifecycleActionResult))
	return &autoscaling.CompleteLifecycleActionOutput{}, nil
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/juju/errors"

	"github.com/pwsia/deployec2/core/remotecommand"
)

// AutoScalingClient is the part of the Auto Scaling API used by
// LifecycleService.
type AutoScalingClient interface {
	CompleteLifecycleAction(context.Context, *autoscaling.CompleteLifecycleActionInput, ...func(*autoscaling.Options)) (*autoscaling.CompleteLifecycleActionOutput, error)
}

// LifecycleService releases instances from Auto Scaling lifecycle hooks.
type LifecycleService struct {
	client AutoScalingClient
}

// NewLifecycleService returns a LifecycleService using client.
func NewLifecycleService(client AutoScalingClient) *LifecycleService {
	return &LifecycleService{client: client}
}

// CompleteLifecycleAction completes the lifecycle action of one instance.
func (s *LifecycleService) CompleteLifecycleAction(ctx context.Context, completion remotecommand.LifecycleCompletion) error {
	_, err := s.client.CompleteLifecycleAction(ctx, &autoscaling.CompleteLifecycleActionInput{
		AutoScalingGroupName:  aws.String(completion.GroupName),
		LifecycleHookName:     aws.String(completion.HookName),
		LifecycleActionResult: aws.String(completion.Result),
		LifecycleActionToken:  aws.String(completion.Token),
		InstanceId:            aws.String(completion.InstanceID),
	})
	return errors.Annotatef(err, "completing lifecycle action for %q", completion.InstanceID)
}

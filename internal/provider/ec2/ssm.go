// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package ec2

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"github.com/juju/errors"

	"github.com/pwsia/deployec2/core/remotecommand"
)

const (
	// DefaultDocumentName is the SSM document used to run shell scripts.
	DefaultDocumentName = "AWS-RunShellScript"

	// DefaultMaxWait bounds a single wait for a command on one host.
	DefaultMaxWait = 100 * time.Second

	defaultComment = "Run command at EC2 Instances of ASG"
)

// SSMClient is the part of the SSM API used by CommandService.
type SSMClient interface {
	ssm.DescribeInstanceInformationAPIClient
	ssm.GetCommandInvocationAPIClient
	ssm.ListCommandInvocationsAPIClient
	SendCommand(context.Context, *ssm.SendCommandInput, ...func(*ssm.Options)) (*ssm.SendCommandOutput, error)
}

// CommandConfig holds the tunables of a CommandService.
type CommandConfig struct {
	DocumentName string
	MaxWait      time.Duration

	// WaitMinDelay and WaitMaxDelay bound the pause between two status
	// checks of a running command. Zero values keep the SDK defaults.
	WaitMinDelay time.Duration
	WaitMaxDelay time.Duration
}

// CommandService runs shell commands on SSM managed instances.
type CommandService struct {
	client SSMClient
	cfg    CommandConfig
}

// NewCommandService returns a CommandService using client.
func NewCommandService(client SSMClient, cfg CommandConfig) *CommandService {
	if cfg.DocumentName == "" {
		cfg.DocumentName = DefaultDocumentName
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	return &CommandService{
		client: client,
		cfg:    cfg,
	}
}

// ListManagedHosts returns the IDs of every instance registered with SSM.
func (s *CommandService) ListManagedHosts(ctx context.Context) ([]string, error) {
	var ids []string
	paginator := ssm.NewDescribeInstanceInformationPaginator(s.client, &ssm.DescribeInstanceInformationInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Annotate(err, "describing instance information")
		}
		for _, info := range page.InstanceInformationList {
			ids = append(ids, aws.ToString(info.InstanceId))
		}
	}
	return ids, nil
}

// SendCommand runs command on every host in hostIDs with a single request.
// The API error is returned untouched so that its code can be classified.
func (s *CommandService) SendCommand(ctx context.Context, hostIDs []string, command string) (string, error) {
	out, err := s.client.SendCommand(ctx, &ssm.SendCommandInput{
		DocumentName: aws.String(s.cfg.DocumentName),
		Comment:      aws.String(defaultComment),
		Parameters: map[string][]string{
			"commands": {command},
		},
		InstanceIds: hostIDs,
	})
	if err != nil {
		return "", err
	}
	if out.Command == nil || aws.ToString(out.Command.CommandId) == "" {
		return "", errors.New("send command returned no command id")
	}
	return aws.ToString(out.Command.CommandId), nil
}

// WaitForCompletion waits for the command to reach a terminal state on the
// host. A command that failed, was cancelled, or is still running when the
// wait gives up is reported as a *remotecommand.NotReadyError.
func (s *CommandService) WaitForCompletion(ctx context.Context, commandID, hostID string) error {
	waiter := ssm.NewCommandExecutedWaiter(s.client, func(o *ssm.CommandExecutedWaiterOptions) {
		if s.cfg.WaitMinDelay > 0 {
			o.MinDelay = s.cfg.WaitMinDelay
		}
		if s.cfg.WaitMaxDelay > 0 {
			o.MaxDelay = s.cfg.WaitMaxDelay
		}
	})
	err := waiter.Wait(ctx, &ssm.GetCommandInvocationInput{
		CommandId:  aws.String(commandID),
		InstanceId: aws.String(hostID),
	}, s.cfg.MaxWait)
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return &remotecommand.NotReadyError{
		CommandID:  commandID,
		InstanceID: hostID,
		Err:        err,
	}
}

// ListInvocations returns the output captured by the first plugin of the
// command on every host it ran on.
func (s *CommandService) ListInvocations(ctx context.Context, commandID string) ([]remotecommand.Invocation, error) {
	var invocations []remotecommand.Invocation
	paginator := ssm.NewListCommandInvocationsPaginator(s.client, &ssm.ListCommandInvocationsInput{
		CommandId: aws.String(commandID),
		Details:   true,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Annotatef(err, "listing invocations of command %q", commandID)
		}
		for _, invocation := range page.CommandInvocations {
			var output string
			if len(invocation.CommandPlugins) > 0 {
				output = aws.ToString(invocation.CommandPlugins[0].Output)
			}
			invocations = append(invocations, remotecommand.Invocation{
				InstanceID: aws.ToString(invocation.InstanceId),
				Output:     output,
			})
		}
	}
	return invocations, nil
}

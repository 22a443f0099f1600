// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
)

// Invocation is the simulated state of a command on one instance.
type Invocation struct {
	Status types.CommandInvocationStatus
	Output string
}

type command struct {
	id          string
	text        string
	instanceIDs []string
	invocations map[string]*Invocation
}

// SSMServer implements an SSM simulator for use in testing.
type SSMServer struct {
	mu sync.Mutex

	pageSize   int
	nextID     int
	instances  []string
	commands   map[string]*command
	sendErrors []error
	calls      map[string]int
}

// NewSSMServer returns a simulator that serves pages of pageSize items.
func NewSSMServer(pageSize int) *SSMServer {
	srv := &SSMServer{pageSize: pageSize}
	srv.Reset()
	return srv
}

// Reset forgets every instance and command.
func (s *SSMServer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = 0
	s.instances = nil
	s.commands = make(map[string]*command)
	s.sendErrors = nil
	s.calls = make(map[string]int)
}

// RegisterInstances adds managed instances.
func (s *SSMServer) RegisterInstances(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = append(s.instances, ids...)
}

// FailSendCommand queues errors returned by the next SendCommand calls.
func (s *SSMServer) FailSendCommand(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErrors = append(s.sendErrors, errs...)
}

// SetInvocation sets the state of a command on an instance.
func (s *SSMServer) SetInvocation(commandID, instanceID string, inv Invocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd, ok := s.commands[commandID]; ok {
		cmd.invocations[instanceID] = &inv
	}
}

// CommandText returns the shell command submitted as commandID.
func (s *SSMServer) CommandText(commandID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd, ok := s.commands[commandID]; ok {
		return cmd.text
	}
	return ""
}

// Calls returns how many times the named operation was called.
func (s *SSMServer) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *SSMServer) isRegistered(id string) bool {
	for _, registered := range s.instances {
		if registered == id {
			return true
		}
	}
	return false
}

// page returns the bounds of the page starting at token.
func (s *SSMServer) page(token *string, total int) (int, int, *string, error) {
	start := 0
	if token != nil {
		var err error
		if start, err = strconv.Atoi(*token); err != nil || start > total {
			return 0, 0, nil, apiError("InvalidNextToken", "invalid next token")
		}
	}
	end := total
	if s.pageSize > 0 && start+s.pageSize < total {
		end = start + s.pageSize
	}
	var next *string
	if end < total {
		next = aws.String(strconv.Itoa(end))
	}
	return start, end, next, nil
}

func (s *SSMServer) DescribeInstanceInformation(
	ctx context.Context,
	input *ssm.DescribeInstanceInformationInput,
	opts ...func(*ssm.Options),
) (*ssm.DescribeInstanceInformationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["DescribeInstanceInformation"]++

	start, end, next, err := s.page(input.NextToken, len(s.instances))
	if err != nil {
		return nil, err
	}
	out := &ssm.DescribeInstanceInformationOutput{NextToken: next}
	for _, id := range s.instances[start:end] {
		out.InstanceInformationList = append(out.InstanceInformationList, types.InstanceInformation{
			InstanceId: aws.String(id),
			PingStatus: types.PingStatusOnline,
		})
	}
	return out, nil
}

func (s *SSMServer) SendCommand(
	ctx context.Context,
	input *ssm.SendCommandInput,
	opts ...func(*ssm.Options),
) (*ssm.SendCommandOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["SendCommand"]++

	if len(s.sendErrors) > 0 {
		err := s.sendErrors[0]
		s.sendErrors = s.sendErrors[1:]
		return nil, err
	}
	if aws.ToString(input.DocumentName) != "AWS-RunShellScript" {
		return nil, &types.InvalidDocument{Message: aws.String("unknown document")}
	}
	for _, id := range input.InstanceIds {
		if !s.isRegistered(id) {
			return nil, &types.InvalidInstanceId{Message: aws.String(fmt.Sprintf("instance %s not registered", id))}
		}
	}

	s.nextID++
	cmd := &command{
		id:          fmt.Sprintf("cmd-%d", s.nextID),
		instanceIDs: append([]string(nil), input.InstanceIds...),
		invocations: make(map[string]*Invocation),
	}
	if commands := input.Parameters["commands"]; len(commands) > 0 {
		cmd.text = commands[0]
	}
	for _, id := range cmd.instanceIDs {
		cmd.invocations[id] = &Invocation{Status: types.CommandInvocationStatusInProgress}
	}
	s.commands[cmd.id] = cmd

	return &ssm.SendCommandOutput{
		Command: &types.Command{
			CommandId:   aws.String(cmd.id),
			InstanceIds: cmd.instanceIDs,
			Status:      types.CommandStatusPending,
		},
	}, nil
}

func (s *SSMServer) GetCommandInvocation(
	ctx context.Context,
	input *ssm.GetCommandInvocationInput,
	opts ...func(*ssm.Options),
) (*ssm.GetCommandInvocationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetCommandInvocation"]++

	cmd, ok := s.commands[aws.ToString(input.CommandId)]
	if !ok {
		return nil, &types.InvocationDoesNotExist{}
	}
	inv, ok := cmd.invocations[aws.ToString(input.InstanceId)]
	if !ok {
		return nil, &types.InvocationDoesNotExist{}
	}
	return &ssm.GetCommandInvocationOutput{
		CommandId:             input.CommandId,
		InstanceId:            input.InstanceId,
		Status:                inv.Status,
		StandardOutputContent: aws.String(inv.Output),
	}, nil
}

func (s *SSMServer) ListCommandInvocations(
	ctx context.Context,
	input *ssm.ListCommandInvocationsInput,
	opts ...func(*ssm.Options),
) (*ssm.ListCommandInvocationsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["ListCommandInvocations"]++

	cmd, ok := s.commands[aws.ToString(input.CommandId)]
	if !ok {
		return nil, &types.InvalidCommandId{}
	}
	ids := append([]string(nil), cmd.instanceIDs...)
	sort.Strings(ids)

	start, end, next, err := s.page(input.NextToken, len(ids))
	if err != nil {
		return nil, err
	}
	out := &ssm.ListCommandInvocationsOutput{NextToken: next}
	for _, id := range ids[start:end] {
		inv := cmd.invocations[id]
		invocation := types.CommandInvocation{
			CommandId:  aws.String(cmd.id),
			InstanceId: aws.String(id),
			Status:     inv.Status,
		}
		if input.Details {
			invocation.CommandPlugins = []types.CommandPlugin{{
				Name:   aws.String("aws:runShellScript"),
				Output: aws.String(inv.Output),
			}}
		}
		out.CommandInvocations = append(out.CommandInvocations, invocation)
	}
	return out, nil
}

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

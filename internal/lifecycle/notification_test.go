// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package lifecycle_test

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/pwsia/deployec2/internal/lifecycle"
)

type notificationSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&notificationSuite{})

const warmPoolMessage = `{
	"Origin": "WarmPool",
	"Destination": "AutoScalingGroup",
	"LifecycleHookName": "launch-hook",
	"AutoScalingGroupName": "pwsia-asg",
	"LifecycleActionToken": "71514b9d-6a40-4b26-8523-05e7ee35fa40",
	"EC2InstanceId": "i-0598c7d356eba48d7",
	"LifecycleTransition": "autoscaling:EC2_INSTANCE_LAUNCHING",
	"NotificationMetadata": "deploy"
}`

func envelope(c *gc.C, messages ...string) []byte {
	var event events.SNSEvent
	for _, msg := range messages {
		event.Records = append(event.Records, events.SNSEventRecord{
			EventSource: "aws:sns",
			SNS: events.SNSEntity{
				Type:    "Notification",
				Message: msg,
			},
		})
	}
	payload, err := json.Marshal(event)
	c.Assert(err, jc.ErrorIsNil)
	return payload
}

func (s *notificationSuite) TestParseWarmPoolNotification(c *gc.C) {
	event, err := lifecycle.ParseNotification(envelope(c, warmPoolMessage))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(event, jc.DeepEquals, lifecycle.Event{
		Origin:               lifecycle.WarmPoolActivation,
		LifecycleActionToken: "71514b9d-6a40-4b26-8523-05e7ee35fa40",
		AutoScalingGroupName: "pwsia-asg",
		LifecycleHookName:    "launch-hook",
		InstanceID:           "i-0598c7d356eba48d7",
		LifecycleTransition:  "autoscaling:EC2_INSTANCE_LAUNCHING",
		Destination:          "AutoScalingGroup",
		NotificationMetadata: "deploy",
	})
	c.Check(event.IsWarmPoolActivation(), jc.IsTrue)
	c.Check(event.HasToken(), jc.IsTrue)
}

func (s *notificationSuite) TestParseOtherOrigin(c *gc.C) {
	event, err := lifecycle.ParseNotification(envelope(c, `{
		"Origin": "EC2",
		"AutoScalingGroupName": "pwsia-asg",
		"LifecycleHookName": "launch-hook",
		"LifecycleActionToken": "token"
	}`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(event.Origin, gc.Equals, lifecycle.Other)
	c.Check(event.IsWarmPoolActivation(), jc.IsFalse)
	c.Check(event.InstanceID, gc.Equals, "")
}

func (s *notificationSuite) TestParseWithoutToken(c *gc.C) {
	event, err := lifecycle.ParseNotification(envelope(c, `{"Event": "autoscaling:TEST_NOTIFICATION"}`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(event.Origin, gc.Equals, lifecycle.Other)
	c.Check(event.HasToken(), jc.IsFalse)
}

func (s *notificationSuite) TestParseNonStringFields(c *gc.C) {
	event, err := lifecycle.ParseNotification(envelope(c, `{
		"Origin": 5,
		"AutoScalingGroupName": "pwsia-asg",
		"LifecycleHookName": "launch-hook",
		"LifecycleActionToken": "token",
		"EC2InstanceId": null,
		"NotificationMetadata": {"stage": "deploy"}
	}`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(event.Origin, gc.Equals, lifecycle.Other)
	c.Check(event.AutoScalingGroupName, gc.Equals, "pwsia-asg")
	c.Check(event.LifecycleActionToken, gc.Equals, "token")
	c.Check(event.InstanceID, gc.Equals, "")
	c.Check(event.NotificationMetadata, gc.Equals, "")
}

func (s *notificationSuite) TestParseUsesFirstRecord(c *gc.C) {
	event, err := lifecycle.ParseNotification(envelope(c, warmPoolMessage, `{"Origin": "EC2"}`))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(event.Origin, gc.Equals, lifecycle.WarmPoolActivation)
}

func (s *notificationSuite) TestParseMalformed(c *gc.C) {
	tests := []struct {
		about   string
		payload []byte
		match   string
	}{{
		about:   "envelope is not json",
		payload: []byte("not json"),
		match:   "decoding envelope: .*: malformed lifecycle event",
	}, {
		about:   "no records",
		payload: []byte(`{"Records": []}`),
		match:   "no records: malformed lifecycle event",
	}, {
		about:   "message is not json",
		payload: envelope(c, "{not json"),
		match:   "decoding message: .*: malformed lifecycle event",
	}, {
		about:   "message is not an object",
		payload: envelope(c, `["i-1"]`),
		match:   "decoding message: .*: malformed lifecycle event",
	}, {
		about:   "message is null",
		payload: envelope(c, "null"),
		match:   "empty message: malformed lifecycle event",
	}, {
		about:   "message is empty",
		payload: envelope(c, ""),
		match:   "decoding message: .*: malformed lifecycle event",
	}}
	for i, test := range tests {
		c.Logf("test %d: %s", i, test.about)
		_, err := lifecycle.ParseNotification(test.payload)
		c.Check(err, gc.ErrorMatches, test.match)
		c.Check(errors.Is(err, lifecycle.MalformedEvent), jc.IsTrue)
	}
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package lifecycle

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/juju/errors"
)

// MalformedEvent is returned when a notification cannot be decoded. Retrying
// the same payload can never succeed.
const MalformedEvent = errors.ConstError("malformed lifecycle event")

// ParseNotification classifies the raw SNS invocation payload. Only the first
// record is considered.
func ParseNotification(payload []byte) (Event, error) {
	var envelope events.SNSEvent
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return Event{}, errors.Annotatef(MalformedEvent, "decoding envelope: %v", err)
	}
	if len(envelope.Records) == 0 {
		return Event{}, errors.Annotate(MalformedEvent, "no records")
	}
	return parseMessage(envelope.Records[0].SNS.Message)
}

func parseMessage(raw string) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Event{}, errors.Annotatef(MalformedEvent, "decoding message: %v", err)
	}
	if fields == nil {
		return Event{}, errors.Annotate(MalformedEvent, "empty message")
	}

	origin := Other
	if Origin(stringField(fields, "Origin")) == WarmPoolActivation {
		origin = WarmPoolActivation
	}
	return Event{
		Origin:               origin,
		LifecycleActionToken: stringField(fields, "LifecycleActionToken"),
		AutoScalingGroupName: stringField(fields, "AutoScalingGroupName"),
		LifecycleHookName:    stringField(fields, "LifecycleHookName"),
		InstanceID:           stringField(fields, "EC2InstanceId"),
		LifecycleTransition:  stringField(fields, "LifecycleTransition"),
		Destination:          stringField(fields, "Destination"),
		NotificationMetadata: stringField(fields, "NotificationMetadata"),
	}, nil
}

// stringField returns the named field of the message. Missing fields and
// fields that are not strings read as empty.
func stringField(fields map[string]json.RawMessage, name string) string {
	var value string
	if err := json.Unmarshal(fields[name], &value); err != nil {
		return ""
	}
	return value
}

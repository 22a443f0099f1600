// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package lifecycle

// Origin describes where the host that triggered the event came from.
type Origin string

const (
	// WarmPoolActivation marks a pre-provisioned host leaving the warm
	// pool to join the group in service.
	WarmPoolActivation Origin = "WarmPool"

	// Other covers every other origin, including events that carry none.
	Other Origin = "Other"
)

// Event is a classified lifecycle notification. It is never modified after
// ParseNotification returns it.
type Event struct {
	Origin Origin

	// LifecycleActionToken is empty when the notification did not come
	// from a pending lifecycle transition.
	LifecycleActionToken string
	AutoScalingGroupName string
	LifecycleHookName    string

	// InstanceID is the host named by the notification, if any.
	InstanceID string

	LifecycleTransition  string
	Destination          string
	NotificationMetadata string
}

// HasToken reports whether the event holds a lifecycle transition that must
// be released.
func (e Event) HasToken() bool {
	return e.LifecycleActionToken != ""
}

// IsWarmPoolActivation reports whether the event was triggered by a host
// leaving the warm pool.
func (e Event) IsWarmPoolActivation() bool {
	return e.Origin == WarmPoolActivation
}

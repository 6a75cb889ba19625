package models

// SubscriptionStatus represents the billing state of an organization's
// subscription. Transitions are applied exclusively by the subscription
// state machine; nothing else writes this field.
type SubscriptionStatus string

const (
	SubscriptionStatusNone     SubscriptionStatus = "none"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// subscriptionTransitions lists the allowed status transitions.
var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusNone:     {SubscriptionStatusTrialing, SubscriptionStatusActive},
	SubscriptionStatusTrialing: {SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusCanceled},
	SubscriptionStatusActive:   {SubscriptionStatusPastDue, SubscriptionStatusCanceled},
	SubscriptionStatusPastDue:  {SubscriptionStatusActive, SubscriptionStatusCanceled},
	SubscriptionStatusCanceled: {SubscriptionStatusTrialing, SubscriptionStatusActive},
}

// IsValid checks if the SubscriptionStatus is valid
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusNone, SubscriptionStatusTrialing, SubscriptionStatusActive,
		SubscriptionStatusPastDue, SubscriptionStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to next is allowed.
// Re-applying the current status is always allowed so that repeated
// provider events (renewals, quantity updates) remain no-op transitions.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range subscriptionTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// MembershipRole represents the role of a user within an organization
type MembershipRole string

const (
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
	MembershipRoleViewer MembershipRole = "viewer"
)

// IsValid checks if the MembershipRole is valid
func (r MembershipRole) IsValid() bool {
	switch r {
	case MembershipRoleAdmin, MembershipRoleMember, MembershipRoleViewer:
		return true
	}
	return false
}

// MembershipStatus represents the lifecycle state of a membership.
// Only active memberships count toward seat usage.
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusInvited   MembershipStatus = "invited"
	MembershipStatusSuspended MembershipStatus = "suspended"
	MembershipStatusRemoved   MembershipStatus = "removed"
)

// IsValid checks if the MembershipStatus is valid
func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipStatusActive, MembershipStatusInvited, MembershipStatusSuspended, MembershipStatusRemoved:
		return true
	}
	return false
}

// SubscriptionEventType identifies a provider webhook event or an
// internally recorded billing event. The webhook dispatcher switches
// exhaustively over these values; unknown types are acknowledged and
// logged, never processed.
type SubscriptionEventType string

const (
	EventSubscriptionCreated  SubscriptionEventType = "subscription.created"
	EventSubscriptionUpdated  SubscriptionEventType = "subscription.updated"
	EventSubscriptionCanceled SubscriptionEventType = "subscription.canceled"
	EventTrialEnded           SubscriptionEventType = "subscription.trial_ended"
	EventPaymentSucceeded     SubscriptionEventType = "payment.succeeded"
	EventPaymentFailed        SubscriptionEventType = "payment.failed"

	// EventSeatSyncFailed is recorded locally when pushing a seat count to
	// the provider exhausts its retries. It never arrives via webhook.
	EventSeatSyncFailed SubscriptionEventType = "internal.seat_sync_failed"
)

// Known reports whether the event type maps to a handler. Unknown
// provider types must be acknowledged without error to avoid retry
// storms.
func (t SubscriptionEventType) Known() bool {
	switch t {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCanceled,
		EventTrialEnded, EventPaymentSucceeded, EventPaymentFailed, EventSeatSyncFailed:
		return true
	}
	return false
}

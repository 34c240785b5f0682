package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAlreadyCanceled      = errors.New("subscription already canceled")
	ErrPlanRequired         = errors.New("subscription requires an active plan")
	ErrSubscriberRequired   = errors.New("subscriber reference is required")
)

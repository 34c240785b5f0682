package payment

import "errors"

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrGatewayNotFound      = errors.New("payment gateway not registered")
	ErrGatewayNotAllowed    = errors.New("payment gateway not allowed for plan")
	ErrDuplicateGateway     = errors.New("payment gateway already registered")
	ErrApprovalRequired     = errors.New("payment requires manual approval")
	ErrInvalidStatus        = errors.New("operation not allowed in current payment status")
	ErrExternalGateway      = errors.New("payment gateway failure")
	ErrSubscriptionRequired = errors.New("subscription reference is required")
	ErrPlanRequired         = errors.New("plan reference is required")
)

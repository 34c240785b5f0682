package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// Status is a payment lifecycle state. The state machine has exactly three
// edges: pending to paid, pending to failed, and paid to refunded.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Method is how the subscriber pays. Offline methods settle outside any
// gateway and typically require manual approval.
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodOnline       Method = "online"
)

// Offline reports whether the method settles without an online gateway.
func (m Method) Offline() bool {
	return m == MethodCash || m == MethodBankTransfer
}

// Known gateway identifiers. Adapters register under these keys; custom
// adapters may use any other short string.
const (
	GatewayCash     = "cash"
	GatewayStripe   = "stripe"
	GatewayPayPal   = "paypal"
	GatewayPaddle   = "paddle"
	GatewayMidtrans = "midtrans"
	GatewayCustom   = "custom_local"
)

// Payment is one settlement attempt against a subscription.
type Payment struct {
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	Gateway        string
	Method         Method
	Amount         plan.Money
	Status         Status

	// TransactionID and GatewayResponse carry the gateway's correlation id
	// and raw response. Opaque to this package.
	TransactionID   string
	GatewayResponse map[string]any

	// RequiresApproval marks offline payments that must be signed off by a
	// human before they count as paid.
	RequiresApproval bool
	ApprovedBy       string
	ApprovedAt       *time.Time

	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsPending reports whether the payment awaits settlement.
func (p *Payment) IsPending() bool { return p.Status == StatusPending }

// IsPaid reports whether the payment settled successfully.
func (p *Payment) IsPaid() bool { return p.Status == StatusPaid }

// IsDeleted reports whether the payment has been soft-deleted.
func (p *Payment) IsDeleted() bool { return p.DeletedAt != nil }

// MarkAsPaidAt settles the payment. A payment still flagged requires_approval
// refuses with ErrApprovalRequired; ApproveAt is the only paid path for those.
// The transition is otherwise unguarded by current status.
func (p *Payment) MarkAsPaidAt(now time.Time) error {
	if p.RequiresApproval {
		return ErrApprovalRequired
	}
	now = now.UTC()
	p.Status = StatusPaid
	p.PaidAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkAsFailedAt records a settlement failure.
func (p *Payment) MarkAsFailedAt(now time.Time) {
	p.Status = StatusFailed
	p.UpdatedAt = now.UTC()
}

// MarkAsRefundedAt records a refund of a settled payment.
func (p *Payment) MarkAsRefundedAt(now time.Time) {
	p.Status = StatusRefunded
	p.UpdatedAt = now.UTC()
}

// ApproveAt is the manual sign-off workflow: it records the approver, clears
// the approval flag, and settles the payment. Only pending payments can be
// approved.
func (p *Payment) ApproveAt(approver string, now time.Time) error {
	if p.Status != StatusPending {
		return ErrInvalidStatus
	}
	now = now.UTC()
	p.RequiresApproval = false
	p.ApprovedBy = approver
	p.ApprovedAt = &now
	return p.MarkAsPaidAt(now)
}

package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/l10n"
	"github.com/dmitrymomot/billingkit/pkg/period"
	"github.com/dmitrymomot/billingkit/pkg/plan"
)

// Subscription binds one subscriber to a plan for a time window. Status is
// never stored; it is derived from the four timestamps on every read.
type Subscription struct {
	ID          uuid.UUID
	Subscriber  Subscriber
	PlanID      uuid.UUID
	Slug        string
	Name        l10n.Text
	Description l10n.Text

	TrialEndsAt *time.Time
	StartsAt    *time.Time
	EndsAt      *time.Time
	CancelsAt   *time.Time
	CanceledAt  *time.Time

	// ProviderRefs holds opaque correlation IDs assigned by external payment
	// providers, keyed by gateway identifier. Never interpreted by this core.
	ProviderRefs map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Status is a single-label summary of the derived state. The overlapping
// flags (a deferred-canceled subscription stays active until its period ends;
// a trial runs inside an active window) collapse in this priority order:
// canceled, ended, trialing, active.
type Status string

const (
	StatusCanceled Status = "canceled"
	StatusEnded    Status = "ended"
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
)

// ActiveAt reports whether the subscriber has access at the given time:
// the window is open-ended or has not yet closed. A deferred cancellation
// does not revoke access until the window closes.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.EndsAt == nil || s.EndsAt.After(now)
}

// Active reports whether the subscriber has access now.
func (s *Subscription) Active() bool {
	return s.ActiveAt(time.Now().UTC())
}

// Inactive is the negation of Active.
func (s *Subscription) Inactive() bool {
	return !s.Active()
}

// OnTrialAt reports whether the trial window is still open at the given time.
// Trial is an independent flag, not mutually exclusive with Active.
func (s *Subscription) OnTrialAt(now time.Time) bool {
	return s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

// OnTrial reports whether the trial window is still open.
func (s *Subscription) OnTrial() bool {
	return s.OnTrialAt(time.Now().UTC())
}

// Canceled reports whether a cancellation has been recorded, immediate or
// deferred. It may overlap with Active until the period elapses.
func (s *Subscription) Canceled() bool {
	return s.CanceledAt != nil
}

// EndedAt reports whether the window closed strictly before the given time.
func (s *Subscription) EndedAt(now time.Time) bool {
	return s.EndsAt != nil && s.EndsAt.Before(now)
}

// Ended reports whether the window has closed.
func (s *Subscription) Ended() bool {
	return s.EndedAt(time.Now().UTC())
}

// IsDeleted reports whether the subscription has been soft-deleted.
func (s *Subscription) IsDeleted() bool {
	return s.DeletedAt != nil
}

// StatusAt returns the single-label status at the given time.
func (s *Subscription) StatusAt(now time.Time) Status {
	switch {
	case s.Canceled():
		return StatusCanceled
	case s.EndedAt(now):
		return StatusEnded
	case s.OnTrialAt(now):
		return StatusTrialing
	}
	return StatusActive
}

// CurrentStatus returns the single-label status now.
func (s *Subscription) CurrentStatus() Status {
	return s.StatusAt(time.Now().UTC())
}

// CancelAt records a cancellation at the given time. Immediate cancellation
// closes the window right away; deferred cancellation schedules it for the
// already-set window end, keeping access until then. Re-cancelling with the
// same immediacy returns ErrAlreadyCanceled; a different immediacy overwrites
// the earlier cancellation.
func (s *Subscription) CancelAt(now time.Time, immediately bool) error {
	if s.CanceledAt != nil && s.canceledImmediately() == immediately {
		return ErrAlreadyCanceled
	}

	now = now.UTC()
	s.CanceledAt = &now
	if immediately {
		s.EndsAt = &now
		s.CancelsAt = nil
	} else {
		s.CancelsAt = s.EndsAt
	}
	s.UpdatedAt = now
	return nil
}

// Cancel records a cancellation now.
func (s *Subscription) Cancel(immediately bool) error {
	return s.CancelAt(time.Now().UTC(), immediately)
}

func (s *Subscription) canceledImmediately() bool {
	return s.CanceledAt != nil && s.EndsAt != nil && s.EndsAt.Equal(*s.CanceledAt)
}

// RenewAt computes the next billing window from the plan's invoice period and
// moves the subscription onto it. The window is anchored at the later of the
// current window end and now, so an expired subscription resumes from now
// instead of back-filling lapsed periods, while an early renewal extends the
// current window seamlessly.
func (s *Subscription) RenewAt(p *plan.Plan, now time.Time) error {
	if p == nil || p.IsDeleted() {
		return ErrPlanRequired
	}

	now = now.UTC()
	anchor := now
	if s.EndsAt != nil && s.EndsAt.After(anchor) {
		anchor = s.EndsAt.UTC()
	}

	window, err := period.New(p.InvoiceInterval, p.InvoicePeriod, anchor)
	if err != nil {
		return err
	}

	s.StartsAt = &window.Start
	s.EndsAt = &window.End
	s.UpdatedAt = now
	return nil
}

// Renew moves the subscription onto its next billing window, anchored now.
func (s *Subscription) Renew(p *plan.Plan) error {
	return s.RenewAt(p, time.Now().UTC())
}

// ChangePlanAt reassigns the plan reference. The billing window is left
// untouched on purpose: proration policy belongs to the caller, which should
// follow up with a renewal when a fresh window is wanted. The new plan must
// exist, be active, and not be soft-deleted.
func (s *Subscription) ChangePlanAt(p *plan.Plan, now time.Time) error {
	if p == nil || p.IsDeleted() || !p.Active {
		return ErrPlanRequired
	}
	s.PlanID = p.ID
	s.UpdatedAt = now.UTC()
	return nil
}

// ChangePlan reassigns the plan reference now.
func (s *Subscription) ChangePlan(p *plan.Plan) error {
	return s.ChangePlanAt(p, time.Now().UTC())
}

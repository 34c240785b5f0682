// Package subscription owns the subscription lifecycle: status derivation
// from stored timestamps and the cancel/renew/change-plan transitions.
//
// # Derived status
//
// Status is computed fresh on every read from four nullable timestamps and is
// never persisted, which rules out stale-state bugs by construction:
//
//   - Canceled: canceled_at is set. A deferred cancellation overlaps with
//     Active until the billing window closes.
//   - Ended: ends_at is set and strictly in the past.
//   - Active: ends_at is null or in the future.
//   - OnTrial: trial_ends_at is set and in the future; an independent flag
//     that overlaps with Active.
//
// Callers that need a single label use CurrentStatus, which collapses the
// overlaps in priority order: canceled, ended, trialing, active.
//
// # Transitions
//
// Cancel comes in two flavors. Immediate cancellation closes the billing
// window at once; deferred cancellation marks the subscription canceled but
// keeps access until the already-scheduled window end.
//
// Renew computes the next window from the plan's invoice period, anchored at
// the later of the current window end and now: an expired subscription
// resumes from now rather than back-filling lapsed periods. Renewal requires
// a live plan reference and fails with ErrPlanRequired otherwise.
//
// ChangePlan swaps only the plan reference. Proration is explicitly not this
// package's call; follow up with Renew to open a window on the new plan's
// terms.
//
// The package assumes the Store serializes access per subscription row and
// performs no internal locking beyond that contract.
package subscription

// Package entitlement meters feature consumption under a subscription.
//
// A feature's value string decides the metering semantics:
//
//   - "unlimited": consumption is never blocked and Remaining reports the
//     Unlimited sentinel.
//   - "true" / "false": the feature is an on/off gate. CanUse answers the
//     gate and Remaining reports 1 or 0; recorded usage never changes the
//     answer.
//   - a non-negative integer: a hard usage limit per reset window.
//
// The Tracker keeps one counter per (subscription, feature) pair. Features
// with a reset window get a valid_until stamp; once it passes the counter
// reads as zero and the next RecordUsage starts a fresh window anchored at
// the record time. Counter expiry is evaluated lazily on read, no background
// job sweeps stale rows.
package entitlement

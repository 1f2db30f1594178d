// Package notifications provides the in-app notification inbox for the loan
// tracker: persistent per-user notifications with read state, plus
// best-effort real-time delivery.
//
// The package is organised around three pieces:
//
//   - Storage   – persistence interface with Postgres and in-memory implementations
//   - Deliverer – optional real-time fan-out (Redis pub/sub, multi-channel, no-op)
//   - Manager   – stores first, then attempts delivery; delivery failures
//     never fail the operation since the notification is already persisted
//
// Notification IDs are caller-chosen and Put has upsert semantics, so
// reminder fires that reuse a loan's stable identity replace the prior
// entry instead of piling up.
//
// The Manager also implements the loan reminder presenter contract
// (reminder.Presenter), bridging fired alarms into the inbox.
package notifications

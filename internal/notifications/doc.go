// Package notifications announces check results through one or more senders.
//
// NewService fans out to every configured transport (ntfy, Telegram, email)
// and degrades to a no-op when none is configured. Callers depend only on the
// Service interface; Dedup can wrap any Service to drop a repeat of the
// previous notification inside a time window.
package notifications

// Package usagelog records prompt invocations for analytics. Entries are
// append-only and immutable; recording never fails on optional metadata and
// never blocks on the configured Sink (forwarding is best-effort,
// fire-and-forget via a buffered queue).
package usagelog

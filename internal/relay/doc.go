// Package relay delivers room events to connected participants.
//
// Fanout encodes an event once and enqueues it on every member's outbox.
// Enqueueing for a room happens under that room's lock, so all members see a
// room's events in the same order. When a cluster bus is configured, frames
// are also forwarded to other instances, which deliver them to their own
// local members.
//
// Presence announces joins and leaves through the same path. Presence events
// are never persisted.
package relay

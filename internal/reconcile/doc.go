// Package reconcile validates scene mutations and applies them to the store.
//
// Each handler validates its input before touching the store, applies the
// mutation with a single atomic store call, and on success returns a Result
// describing what to broadcast. On failure nothing is broadcast; the caller
// reports the error to the originator only.
//
// Store calls run on a context detached from the caller's cancellation, so a
// mutation in flight completes even if its originator disconnects.
package reconcile

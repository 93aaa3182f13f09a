// Package model defines the shared scene types used across the server.
//
// Conventions:
//   - JSON field names are camelCase to match the browser clients
//   - IDs are opaque strings (uuid for server-generated values)
//   - Timestamps are time.Time, serialized as RFC 3339
package model

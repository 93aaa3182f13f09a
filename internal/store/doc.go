// Package store is the persistence gateway for project documents.
//
// Two implementations satisfy Store:
//   - Memory: mutex-guarded map, used for development and tests
//   - Postgres: one row per project with JSONB list columns
//
// List mutations (AppendToList, ClearList, RemoveFromList) are atomic per
// document in both implementations; callers never read a document and write
// it back.
package store

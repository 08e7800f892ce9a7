// Package store defines persistence interfaces and shared error types for
// the application's entities. Implementations live under
// internal/platform/postgres; services depend only on these interfaces and
// on RunInTransaction for atomic multi-store operations.
package store

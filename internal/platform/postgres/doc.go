// Package postgres provides PostgreSQL implementations of the store
// interfaces, plus shared helpers for mapping driver errors onto the
// store's sentinel errors.
package postgres

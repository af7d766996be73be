// Package repo wraps the queries the account flows run against storage.
package repo

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStale means a conditional update matched no row because the
	// record changed underneath the caller.
	ErrStale = errors.New("record changed concurrently")
)

// Package domain defines domain-level errors for the symbols feature.
package domain

import "errors"

// Domain errors for symbol lookup and resolution.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrSymbolNotFound indicates that no standardized symbol matched the lookup.
	// Callers branch on this to distinguish a miss from a persistence failure.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrSymbolInactive indicates that a resolved symbol is deactivated and
	// must not be used for order placement.
	ErrSymbolInactive = errors.New("symbol is not active")
)

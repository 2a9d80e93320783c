// Package library provides the core abstractions and types for the library
// management domain: the catalog, patron cards and the borrow/return ledger.
//
// This package defines the entities, the query-condition value objects and the
// common error definitions used by the storage engine implementations. It is
// deliberately free of any database or transport concerns.
//
// Error handling follows a kind-based scheme: every failure wraps exactly one
// of the error kinds (ErrNotFound, ErrConflict, ErrOutOfStock,
// ErrInvalidArgument, ErrStoreFailure), so callers classify failures with
// errors.Is while still receiving a human-readable, operation-specific message.
//
// Common usage pattern:
//
//	conditions := library.BookQueryConditions{
//		Category: library.Str("CS"),
//		MinPrice: library.Float(10.0),
//		SortBy:   library.SortByTitle,
//		Order:    library.SortDesc,
//	}
//
//	results, err := engine.QueryBooks(ctx, conditions)
//	if errors.Is(err, library.ErrStoreFailure) {
//		// handle error
//	}
package library

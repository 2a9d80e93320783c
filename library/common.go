package library

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by an engine wraps exactly one of these,
// so callers can classify with errors.Is without parsing messages.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrOutOfStock      = errors.New("out of stock")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStoreFailure    = errors.New("store failure")
)

// Construction errors.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptyTableName        = errors.New("empty table name supplied")
)

// Operation-specific failures, each carrying its error kind.
var (
	ErrBookAlreadyExists     = fmt.Errorf("%w: book already exists", ErrConflict)
	ErrBookNotFound          = fmt.Errorf("%w: book does not exist", ErrNotFound)
	ErrBookHasActiveBorrows  = fmt.Errorf("%w: book has unreturned borrows", ErrConflict)
	ErrNegativeStock         = fmt.Errorf("%w: stock cannot become negative", ErrInvalidArgument)
	ErrNegativePrice         = fmt.Errorf("%w: price cannot be negative", ErrInvalidArgument)
	ErrCardAlreadyExists     = fmt.Errorf("%w: card already exists", ErrConflict)
	ErrCardNotFound          = fmt.Errorf("%w: card does not exist", ErrNotFound)
	ErrCardHasActiveBorrows  = fmt.Errorf("%w: card has unreturned borrows", ErrConflict)
	ErrInvalidCardType       = fmt.Errorf("%w: card type must be student or teacher", ErrInvalidArgument)
	ErrStockInsufficient     = fmt.Errorf("%w: no copies left in stock", ErrOutOfStock)
	ErrDuplicateActiveBorrow = fmt.Errorf("%w: card already has an unreturned borrow of this book", ErrConflict)
	ErrNoActiveBorrow        = fmt.Errorf("%w: no active borrow record found", ErrNotFound)
	ErrZeroBorrowTime        = fmt.Errorf("%w: borrow time must not be zero", ErrInvalidArgument)
	ErrReturnNotAfterBorrow  = fmt.Errorf("%w: return time must be after borrow time", ErrInvalidArgument)
	ErrModifyAffectedNoRows  = fmt.Errorf("%w: modification affected no rows", ErrConflict)
	ErrInvalidIdentifier     = fmt.Errorf("%w: identifier must be a positive integer", ErrInvalidArgument)
	ErrInvalidQueryParameter = fmt.Errorf("%w: malformed numeric query parameter", ErrInvalidArgument)
)

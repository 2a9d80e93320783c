package library

// Borrow represents one borrow record, identified by
// (CardID, BookID, BorrowTime). Timestamps are unix milliseconds.
// A ReturnTime of zero marks the record as active (unreturned); a committed
// non-zero value strictly greater than BorrowTime marks it as returned.
//
// For a given (CardID, BookID) pair at most one active record may exist at a
// time. Borrow records are only ever destroyed as a cascade of book or card
// removal, never directly.
type Borrow struct {
	CardID     int64
	BookID     int64
	BorrowTime int64
	ReturnTime int64
}

// IsActive reports whether the record is still unreturned.
func (b Borrow) IsActive() bool {
	return b.ReturnTime == 0
}

// BorrowHistoryItem is one borrow record joined with the current attributes of
// the borrowed book.
type BorrowHistoryItem struct {
	Borrow Borrow
	Book   Book
}

// BorrowHistories holds the full borrow history of one card, ordered by
// BorrowTime descending with BookID ascending as tie-break.
type BorrowHistories struct {
	Count int
	Items []BorrowHistoryItem
}

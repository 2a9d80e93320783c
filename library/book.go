package library

// Book represents one catalog entry. BookID is assigned by the store on
// creation and is immutable afterwards. The tuple
// (Category, Title, Press, PublishYear, Author) is the natural key and must be
// unique across the whole catalog.
//
// Stock is only ever mutated by borrow, return and stock-adjustment operations,
// never by ModifyBook.
type Book struct {
	BookID      int64
	Category    string
	Title       string
	Press       string
	PublishYear int
	Author      string
	Price       float64
	Stock       int
}

// Validate checks the invariants a book must satisfy before it can be stored.
func (b Book) Validate() error {
	if b.Price < 0 {
		return ErrNegativePrice
	}

	if b.Stock < 0 {
		return ErrNegativeStock
	}

	return nil
}

// BookQueryResults is the full matching set of a catalog query plus its count.
// No pagination, matching the synchronous request/response semantics.
type BookQueryResults struct {
	Count int
	Books []Book
}

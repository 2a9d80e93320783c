// Package postgresengine provides the PostgreSQL implementation of the
// library management core: the book catalog, the card registry and the
// borrow ledger.
//
// The engine supports multiple database libraries through adapters:
//   - pgxpool.Pool (recommended): NewLibraryFromPGXPool
//   - sql.DB (standard library): NewLibraryFromSQLDB
//   - sqlx.DB: NewLibraryFromSQLX
//
// Every statement is built with goqu's typed expression composition, never by
// concatenating values into SQL text. Operations touching more than one row
// or conditioning a mutation on a prior read run inside one transactional
// session with rollback on every failure path; concurrent borrows of the same
// book serialize on an exclusive row lock taken by SELECT ... FOR UPDATE.
//
// Common usage pattern:
//
//	lib, err := postgresengine.NewLibraryFromPGXPool(pool,
//		postgresengine.WithLogger(logger))
//	if err != nil {
//		// handle error
//	}
//
//	book := library.Book{Category: "CS", Title: "TAOCP", Press: "Addison-Wesley",
//		PublishYear: 1968, Author: "Knuth", Price: 199.99, Stock: 3}
//	if err := lib.StoreBook(ctx, &book); err != nil {
//		// handle error; book.BookID is populated on success
//	}
package postgresengine

package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/librarium/library-service-go/library"
	"github.com/librarium/library-service-go/library/postgresengine/internal/adapters"
)

const (
	opStoreBook    = "store_book"
	opStoreBooks   = "store_books"
	opIncBookStock = "inc_book_stock"
	opModifyBook   = "modify_book"
	opRemoveBook   = "remove_book"
	opQueryBooks   = "query_books"
)

// StoreBook inserts a new catalog entry and writes the store-assigned identity
// back into book. It fails with library.ErrBookAlreadyExists if a book with
// the same natural-key tuple is already committed. Existence check and insert
// happen in one transaction; the unique constraint on the table remains the
// final guard under a true race.
func (l Library) StoreBook(ctx context.Context, book *library.Book) error {
	if validateErr := book.Validate(); validateErr != nil {
		return validateErr
	}

	return l.withinTransaction(ctx, opStoreBook, func(tx adapters.DBTx) error {
		exists, checkErr := l.rowExists(ctx, tx, opStoreBook, l.bookNaturalKeyStmt(*book))
		if checkErr != nil {
			return checkErr
		}

		if exists {
			return library.ErrBookAlreadyExists
		}

		id, insertErr := l.insertReturningID(ctx, tx, opStoreBook, l.insertBookStmt(*book))
		if insertErr != nil {
			return insertErr
		}

		book.BookID = id

		return nil
	})
}

// StoreBooks inserts a batch of catalog entries in one transaction. Each
// candidate is independently checked against the store by natural key; only
// non-duplicates are inserted and get their assigned identity written back, in
// submission order. Because the check runs per item inside the transaction, a
// duplicate pair within the batch inserts only its first occurrence. Any
// failure rolls back the whole batch.
func (l Library) StoreBooks(ctx context.Context, books []*library.Book) error {
	for _, book := range books {
		if validateErr := book.Validate(); validateErr != nil {
			return validateErr
		}
	}

	return l.withinTransaction(ctx, opStoreBooks, func(tx adapters.DBTx) error {
		for _, book := range books {
			exists, checkErr := l.rowExists(ctx, tx, opStoreBooks, l.bookNaturalKeyStmt(*book))
			if checkErr != nil {
				return checkErr
			}

			if exists {
				continue
			}

			id, insertErr := l.insertReturningID(ctx, tx, opStoreBooks, l.insertBookStmt(*book))
			if insertErr != nil {
				return insertErr
			}

			book.BookID = id
		}

		return nil
	})
}

// IncBookStock applies delta to the stock of the given book. It fails with
// library.ErrBookNotFound if the book is absent and with
// library.ErrNegativeStock if the adjustment would make the stock negative,
// leaving the stock unchanged. Read and write happen in one transaction.
func (l Library) IncBookStock(ctx context.Context, bookID int64, delta int) error {
	return l.withinTransaction(ctx, opIncBookStock, func(tx adapters.DBTx) error {
		stock, found, readErr := l.readBookStock(ctx, tx, opIncBookStock, bookID, false)
		if readErr != nil {
			return readErr
		}

		if !found {
			return library.ErrBookNotFound
		}

		if stock+delta < 0 {
			return library.ErrNegativeStock
		}

		return l.adjustBookStock(ctx, tx, opIncBookStock, bookID, delta)
	})
}

// ModifyBook updates all fields of the book except its identity and its stock.
// It fails with library.ErrBookNotFound if the identity is absent. Natural-key
// uniqueness is not re-validated here; a violating update surfaces the store's
// unique-constraint failure.
func (l Library) ModifyBook(ctx context.Context, book library.Book) error {
	if book.Price < 0 {
		return library.ErrNegativePrice
	}

	return l.withinTransaction(ctx, opModifyBook, func(tx adapters.DBTx) error {
		exists, checkErr := l.rowExists(ctx, tx, opModifyBook, l.bookByIDStmt(book.BookID))
		if checkErr != nil {
			return checkErr
		}

		if !exists {
			return library.ErrBookNotFound
		}

		updateStmt := l.builder().
			Update(l.bookTable).
			Set(goqu.Record{
				colCategory:    book.Category,
				colTitle:       book.Title,
				colPress:       book.Press,
				colPublishYear: book.PublishYear,
				colAuthor:      book.Author,
				colPrice:       book.Price,
			}).
			Where(goqu.Ex{colBookID: book.BookID})

		rowsAffected, updateErr := l.runExec(ctx, tx, opModifyBook, updateStmt)
		if updateErr != nil {
			return updateErr
		}

		if rowsAffected == 0 {
			return library.ErrModifyAffectedNoRows
		}

		return nil
	})
}

// RemoveBook deletes the book and all of its borrow records in one
// transaction. It fails with library.ErrBookHasActiveBorrows while any borrow
// of the book is unreturned and with library.ErrBookNotFound if the book is
// absent.
func (l Library) RemoveBook(ctx context.Context, bookID int64) error {
	return l.withinTransaction(ctx, opRemoveBook, func(tx adapters.DBTx) error {
		activeStmt := l.builder().
			From(l.borrowTable).
			Select(goqu.L("1")).
			Where(goqu.Ex{colBookID: bookID, colReturnTime: 0})

		hasActive, checkErr := l.rowExists(ctx, tx, opRemoveBook, activeStmt)
		if checkErr != nil {
			return checkErr
		}

		if hasActive {
			return library.ErrBookHasActiveBorrows
		}

		exists, existsErr := l.rowExists(ctx, tx, opRemoveBook, l.bookByIDStmt(bookID))
		if existsErr != nil {
			return existsErr
		}

		if !exists {
			return library.ErrBookNotFound
		}

		deleteBorrowsStmt := l.builder().
			Delete(l.borrowTable).
			Where(goqu.Ex{colBookID: bookID})

		if _, deleteErr := l.runExec(ctx, tx, opRemoveBook, deleteBorrowsStmt); deleteErr != nil {
			return deleteErr
		}

		deleteBookStmt := l.builder().
			Delete(l.bookTable).
			Where(goqu.Ex{colBookID: bookID})

		rowsAffected, deleteErr := l.runExec(ctx, tx, opRemoveBook, deleteBookStmt)
		if deleteErr != nil {
			return deleteErr
		}

		if rowsAffected == 0 {
			return fmt.Errorf("%w: book delete affected no rows", library.ErrStoreFailure)
		}

		return nil
	})
}

// QueryBooks returns the full set of books matching the conjunctive filter,
// ordered by the chosen sort column and direction, plus its count.
func (l Library) QueryBooks(ctx context.Context, conditions library.BookQueryConditions) (library.BookQueryResults, error) {
	var empty library.BookQueryResults

	start := time.Now()

	selectStmt := l.builder().
		From(l.bookTable).
		Select(
			goqu.C(colBookID), goqu.C(colCategory), goqu.C(colTitle), goqu.C(colPress),
			goqu.C(colPublishYear), goqu.C(colAuthor), goqu.C(colPrice), goqu.C(colStock),
		).
		Order(bookOrderExpressions(conditions)...)

	if filterExpressions := bookFilterExpressions(conditions); len(filterExpressions) > 0 {
		selectStmt = selectStmt.Where(goqu.And(filterExpressions...))
	}

	rows, queryErr := l.runQuery(ctx, l.db, opQueryBooks, selectStmt)
	if queryErr != nil {
		return empty, queryErr
	}
	defer l.closeRows(ctx, rows)

	books := make([]library.Book, 0)

	for rows.Next() {
		var book library.Book

		scanErr := rows.Scan(
			&book.BookID, &book.Category, &book.Title, &book.Press,
			&book.PublishYear, &book.Author, &book.Price, &book.Stock,
		)
		if scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return empty, errors.Join(library.ErrStoreFailure, scanErr)
		}

		books = append(books, book)
	}

	l.recordDuration(opQueryBooks, time.Since(start))

	return library.BookQueryResults{Count: len(books), Books: books}, nil
}

func (l Library) bookNaturalKeyStmt(book library.Book) *goqu.SelectDataset {
	return l.builder().
		From(l.bookTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{
			colCategory:    book.Category,
			colTitle:       book.Title,
			colPress:       book.Press,
			colPublishYear: book.PublishYear,
			colAuthor:      book.Author,
		})
}

func (l Library) bookByIDStmt(bookID int64) *goqu.SelectDataset {
	return l.builder().
		From(l.bookTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{colBookID: bookID})
}

func (l Library) insertBookStmt(book library.Book) *goqu.InsertDataset {
	return l.builder().
		Insert(l.bookTable).
		Rows(goqu.Record{
			colCategory:    book.Category,
			colTitle:       book.Title,
			colPress:       book.Press,
			colPublishYear: book.PublishYear,
			colAuthor:      book.Author,
			colPrice:       book.Price,
			colStock:       book.Stock,
		}).
		Returning(goqu.C(colBookID))
}

// readBookStock reads the current stock of a book, optionally taking an
// exclusive row lock for the duration of the enclosing transaction.
func (l Library) readBookStock(ctx context.Context, session dbSession, operation string, bookID int64, forUpdate bool) (int, bool, error) {
	selectStmt := l.builder().
		From(l.bookTable).
		Select(goqu.C(colStock)).
		Where(goqu.Ex{colBookID: bookID})

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	rows, queryErr := l.runQuery(ctx, session, operation, selectStmt)
	if queryErr != nil {
		return 0, false, queryErr
	}
	defer l.closeRows(ctx, rows)

	if !rows.Next() {
		return 0, false, nil
	}

	var stock int
	if scanErr := rows.Scan(&stock); scanErr != nil {
		l.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return 0, false, errors.Join(library.ErrStoreFailure, scanErr)
	}

	return stock, true, nil
}

// adjustBookStock applies a relative stock change on the store side, so the
// committed value is derived from the locked row, not from a stale read.
func (l Library) adjustBookStock(ctx context.Context, session dbSession, operation string, bookID int64, delta int) error {
	updateStmt := l.builder().
		Update(l.bookTable).
		Set(goqu.Record{colStock: goqu.L("? + ?", goqu.C(colStock), delta)}).
		Where(goqu.Ex{colBookID: bookID})

	rowsAffected, updateErr := l.runExec(ctx, session, operation, updateStmt)
	if updateErr != nil {
		return updateErr
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: stock update affected no rows", library.ErrStoreFailure)
	}

	return nil
}

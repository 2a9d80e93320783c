package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium/library-service-go/library"
	"github.com/librarium/library-service-go/library/postgresengine/internal/adapters"
)

const (
	opBorrowBook      = "borrow_book"
	opReturnBook      = "return_book"
	opBorrowHistory   = "borrow_history"
	borrowTableAlias  = "b"
	bookTableAlias    = "bk"
	qualifiedCardID   = borrowTableAlias + "." + colCardID
	qualifiedBookID   = borrowTableAlias + "." + colBookID
	qualifiedBorrowed = borrowTableAlias + "." + colBorrowTime
	qualifiedReturned = borrowTableAlias + "." + colReturnTime
)

// BorrowBook reserves one copy of a book for a card and records the active
// borrow. The book row is read under an exclusive lock for the duration of
// the transaction, so concurrent borrow attempts against the same book
// serialize there and stock can never go negative under race.
//
// It fails with library.ErrBookNotFound if the book is absent, with
// library.ErrStockInsufficient if no copy is left, and with
// library.ErrDuplicateActiveBorrow if the card already holds an unreturned
// borrow of this exact book.
func (l Library) BorrowBook(ctx context.Context, borrow library.Borrow) error {
	if borrow.BorrowTime == 0 {
		return library.ErrZeroBorrowTime
	}

	return l.withinTransaction(ctx, opBorrowBook, func(tx adapters.DBTx) error {
		stock, found, readErr := l.readBookStock(ctx, tx, opBorrowBook, borrow.BookID, true)
		if readErr != nil {
			return readErr
		}

		if !found {
			return library.ErrBookNotFound
		}

		if stock <= 0 {
			return library.ErrStockInsufficient
		}

		duplicate, checkErr := l.rowExists(ctx, tx, opBorrowBook, l.activeBorrowStmt(borrow.CardID, borrow.BookID))
		if checkErr != nil {
			return checkErr
		}

		if duplicate {
			return library.ErrDuplicateActiveBorrow
		}

		if adjustErr := l.adjustBookStock(ctx, tx, opBorrowBook, borrow.BookID, -1); adjustErr != nil {
			return adjustErr
		}

		insertStmt := l.builder().
			Insert(l.borrowTable).
			Rows(goqu.Record{
				colCardID:     borrow.CardID,
				colBookID:     borrow.BookID,
				colBorrowTime: borrow.BorrowTime,
				colReturnTime: 0,
			})

		if _, insertErr := l.runExec(ctx, tx, opBorrowBook, insertStmt); insertErr != nil {
			return insertErr
		}

		return nil
	})
}

// ReturnBook closes the active borrow record for (card, book) and releases the
// copy back into stock. The record lookup matches any active record for the
// pair; the caller-supplied borrow time is only validated for ordering, not
// used for matching.
//
// It fails with library.ErrNoActiveBorrow if the pair has no unreturned
// record, with library.ErrZeroBorrowTime if the supplied borrow time is zero,
// and with library.ErrReturnNotAfterBorrow if the return time does not
// strictly follow the borrow time. No mutation happens on any failure.
func (l Library) ReturnBook(ctx context.Context, borrow library.Borrow) error {
	return l.withinTransaction(ctx, opReturnBook, func(tx adapters.DBTx) error {
		active, checkErr := l.rowExists(ctx, tx, opReturnBook, l.activeBorrowStmt(borrow.CardID, borrow.BookID))
		if checkErr != nil {
			return checkErr
		}

		if !active {
			return library.ErrNoActiveBorrow
		}

		if borrow.BorrowTime == 0 {
			return library.ErrZeroBorrowTime
		}

		if borrow.ReturnTime <= borrow.BorrowTime {
			return library.ErrReturnNotAfterBorrow
		}

		updateStmt := l.builder().
			Update(l.borrowTable).
			Set(goqu.Record{colReturnTime: borrow.ReturnTime}).
			Where(goqu.Ex{
				colCardID:     borrow.CardID,
				colBookID:     borrow.BookID,
				colReturnTime: 0,
			})

		rowsAffected, updateErr := l.runExec(ctx, tx, opReturnBook, updateStmt)
		if updateErr != nil {
			return updateErr
		}

		if rowsAffected == 0 {
			return fmt.Errorf("%w: return time update affected no rows", library.ErrStoreFailure)
		}

		return l.adjustBookStock(ctx, tx, opReturnBook, borrow.BookID, 1)
	})
}

// BorrowHistory returns every borrow record of the card joined with the
// current attributes of the borrowed book, ordered by borrow time descending
// with book identity ascending as tie-break.
func (l Library) BorrowHistory(ctx context.Context, cardID int64) (library.BorrowHistories, error) {
	var empty library.BorrowHistories

	start := time.Now()

	selectStmt := l.builder().
		From(goqu.T(l.borrowTable).As(borrowTableAlias)).
		Join(
			goqu.T(l.bookTable).As(bookTableAlias),
			goqu.On(goqu.I(qualifiedBookID).Eq(goqu.I(bookTableAlias+"."+colBookID))),
		).
		Select(
			goqu.I(qualifiedCardID), goqu.I(qualifiedBookID),
			goqu.I(qualifiedBorrowed), goqu.I(qualifiedReturned),
			goqu.I(bookTableAlias+"."+colCategory), goqu.I(bookTableAlias+"."+colTitle),
			goqu.I(bookTableAlias+"."+colPress), goqu.I(bookTableAlias+"."+colPublishYear),
			goqu.I(bookTableAlias+"."+colAuthor), goqu.I(bookTableAlias+"."+colPrice),
			goqu.I(bookTableAlias+"."+colStock),
		).
		Where(goqu.I(qualifiedCardID).Eq(cardID)).
		Order(goqu.I(qualifiedBorrowed).Desc(), goqu.I(qualifiedBookID).Asc())

	rows, queryErr := l.runQuery(ctx, l.db, opBorrowHistory, selectStmt)
	if queryErr != nil {
		return empty, queryErr
	}
	defer l.closeRows(ctx, rows)

	items := make([]library.BorrowHistoryItem, 0)

	for rows.Next() {
		var item library.BorrowHistoryItem

		scanErr := rows.Scan(
			&item.Borrow.CardID, &item.Borrow.BookID,
			&item.Borrow.BorrowTime, &item.Borrow.ReturnTime,
			&item.Book.Category, &item.Book.Title, &item.Book.Press,
			&item.Book.PublishYear, &item.Book.Author, &item.Book.Price, &item.Book.Stock,
		)
		if scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return empty, errors.Join(library.ErrStoreFailure, scanErr)
		}

		item.Book.BookID = item.Borrow.BookID
		items = append(items, item)
	}

	l.recordDuration(opBorrowHistory, time.Since(start))

	return library.BorrowHistories{Count: len(items), Items: items}, nil
}

func (l Library) activeBorrowStmt(cardID, bookID int64) *goqu.SelectDataset {
	return l.builder().
		From(l.borrowTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{
			colCardID:     cardID,
			colBookID:     bookID,
			colReturnTime: 0,
		})
}

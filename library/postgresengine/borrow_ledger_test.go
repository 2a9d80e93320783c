package postgresengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/library-service-go/library"
)

func sampleBorrow() library.Borrow {
	return library.Borrow{
		CardID:     11,
		BookID:     5,
		BorrowTime: 1700000000000,
	}
}

func Test_BorrowBook_LocksTheBookRow_AndRecordsTheBorrow(t *testing.T) {
	// arrange
	db := (&fakeDB{}).
		onQuery([]any{3}). // locked stock read
		onQuery().         // no duplicate active borrow
		onExec(1).         // stock decremented
		onExec(1)          // borrow record inserted
	lib := newFakeLibrary(db)

	// act
	err := lib.BorrowBook(context.Background(), sampleBorrow())

	// assert
	require.NoError(t, err)
	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[0], "FOR UPDATE")
	assert.Len(t, db.execs, 2)
	assert.Equal(t, 1, db.commits)
	assert.Equal(t, 0, db.rollbacks)
}

func Test_BorrowBook_When_Book_DoesNotExist(t *testing.T) {
	// arrange
	db := (&fakeDB{}).onQuery()
	lib := newFakeLibrary(db)

	// act
	err := lib.BorrowBook(context.Background(), sampleBorrow())

	// assert
	require.ErrorIs(t, err, library.ErrBookNotFound)
	assert.Empty(t, db.execs)
	assert.Equal(t, 1, db.rollbacks)
}

func Test_BorrowBook_When_NoCopy_IsLeftInStock(t *testing.T) {
	// arrange
	db := (&fakeDB{}).onQuery([]any{0})
	lib := newFakeLibrary(db)

	// act
	err := lib.BorrowBook(context.Background(), sampleBorrow())

	// assert
	require.ErrorIs(t, err, library.ErrStockInsufficient)
	assert.ErrorIs(t, err, library.ErrOutOfStock)
	assert.Empty(t, db.execs)
	assert.Equal(t, 1, db.rollbacks)
}

func Test_BorrowBook_When_TheCard_AlreadyHolds_AnActiveBorrow(t *testing.T) {
	// arrange
	db := (&fakeDB{}).
		onQuery([]any{3}).
		onQuery(existsRow())
	lib := newFakeLibrary(db)

	// act
	err := lib.BorrowBook(context.Background(), sampleBorrow())

	// assert
	require.ErrorIs(t, err, library.ErrDuplicateActiveBorrow)
	assert.ErrorIs(t, err, library.ErrConflict)
	assert.Empty(t, db.execs)
}

func Test_BorrowBook_When_BorrowTime_IsZero_NoStatementRuns(t *testing.T) {
	// arrange
	db := &fakeDB{}
	lib := newFakeLibrary(db)

	borrow := sampleBorrow()
	borrow.BorrowTime = 0

	// act
	err := lib.BorrowBook(context.Background(), borrow)

	// assert
	require.ErrorIs(t, err, library.ErrZeroBorrowTime)
	assert.Equal(t, 0, db.begins)
}

func Test_ReturnBook_ClosesTheRecord_AndReleasesTheCopy(t *testing.T) {
	// arrange
	db := (&fakeDB{}).
		onQuery(existsRow()). // active record found
		onExec(1).            // return time set
		onExec(1)             // stock incremented
	lib := newFakeLibrary(db)

	borrow := sampleBorrow()
	borrow.ReturnTime = borrow.BorrowTime + 1000

	// act
	err := lib.ReturnBook(context.Background(), borrow)

	// assert
	require.NoError(t, err)
	assert.Len(t, db.execs, 2)
	assert.Equal(t, 1, db.commits)
}

func Test_ReturnBook_When_NoActiveBorrow_Exists(t *testing.T) {
	// arrange
	db := (&fakeDB{}).onQuery()
	lib := newFakeLibrary(db)

	borrow := sampleBorrow()
	borrow.ReturnTime = borrow.BorrowTime + 1000

	// act
	err := lib.ReturnBook(context.Background(), borrow)

	// assert
	require.ErrorIs(t, err, library.ErrNoActiveBorrow)
	assert.ErrorIs(t, err, library.ErrNotFound)
	assert.Empty(t, db.execs)
	assert.Equal(t, 1, db.rollbacks)
}

func Test_ReturnBook_When_ReturnTime_DoesNotFollow_BorrowTime(t *testing.T) {
	testCases := []struct {
		name       string
		returnTime int64
	}{
		{name: "equal_to_borrow_time", returnTime: 1700000000000},
		{name: "before_borrow_time", returnTime: 1600000000000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			db := (&fakeDB{}).onQuery(existsRow())
			lib := newFakeLibrary(db)

			borrow := sampleBorrow()
			borrow.ReturnTime = tc.returnTime

			// act
			err := lib.ReturnBook(context.Background(), borrow)

			// assert
			require.ErrorIs(t, err, library.ErrReturnNotAfterBorrow)
			assert.Empty(t, db.execs)
			assert.Equal(t, 1, db.rollbacks)
		})
	}
}

func Test_ReturnBook_When_BorrowTime_IsZero(t *testing.T) {
	// arrange
	db := (&fakeDB{}).onQuery(existsRow())
	lib := newFakeLibrary(db)

	borrow := sampleBorrow()
	borrow.BorrowTime = 0
	borrow.ReturnTime = 1700000001000

	// act
	err := lib.ReturnBook(context.Background(), borrow)

	// assert
	require.ErrorIs(t, err, library.ErrZeroBorrowTime)
	assert.Empty(t, db.execs)
}

func Test_BorrowHistory_JoinsBookAttributes_NewestFirst(t *testing.T) {
	// arrange
	db := (&fakeDB{}).onQuery(
		[]any{int64(11), int64(5), int64(1700000002000), int64(0), "CS", "A", "P", 2020, "Alice", 10.5, 3},
		[]any{int64(11), int64(6), int64(1700000001000), int64(1700000005000), "CS", "B", "P", 2021, "Bob", 20.0, 1},
	)
	lib := newFakeLibrary(db)

	// act
	histories, err := lib.BorrowHistory(context.Background(), 11)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, histories.Count)
	require.Len(t, histories.Items, 2)

	first := histories.Items[0]
	assert.True(t, first.Borrow.IsActive())
	assert.Equal(t, int64(5), first.Book.BookID)
	assert.Equal(t, "A", first.Book.Title)

	second := histories.Items[1]
	assert.False(t, second.Borrow.IsActive())
	assert.Equal(t, int64(6), second.Book.BookID)

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "DESC")
	assert.Contains(t, db.queries[0], "JOIN")
}

package httpapi

import (
	"context"

	"github.com/librarium/library-service-go/library"
)

// LibraryService is the domain-operation contract consumed by this adapter.
// The postgresengine Library satisfies it.
type LibraryService interface {
	StoreBook(ctx context.Context, book *library.Book) error
	StoreBooks(ctx context.Context, books []*library.Book) error
	IncBookStock(ctx context.Context, bookID int64, delta int) error
	ModifyBook(ctx context.Context, book library.Book) error
	RemoveBook(ctx context.Context, bookID int64) error
	QueryBooks(ctx context.Context, conditions library.BookQueryConditions) (library.BookQueryResults, error)

	RegisterCard(ctx context.Context, card *library.Card) error
	ModifyCard(ctx context.Context, card library.Card) error
	RemoveCard(ctx context.Context, cardID int64) error
	ListCards(ctx context.Context) (library.CardList, error)

	BorrowBook(ctx context.Context, borrow library.Borrow) error
	ReturnBook(ctx context.Context, borrow library.Borrow) error
	BorrowHistory(ctx context.Context, cardID int64) (library.BorrowHistories, error)
}

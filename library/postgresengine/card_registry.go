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
	opRegisterCard = "register_card"
	opModifyCard   = "modify_card"
	opRemoveCard   = "remove_card"
	opListCards    = "list_cards"
)

// RegisterCard inserts a new patron card and writes the store-assigned
// identity back into card. It fails with library.ErrCardAlreadyExists if a
// card with the same (name, department, type) tuple is already committed.
func (l Library) RegisterCard(ctx context.Context, card *library.Card) error {
	if validateErr := card.Validate(); validateErr != nil {
		return validateErr
	}

	return l.withinTransaction(ctx, opRegisterCard, func(tx adapters.DBTx) error {
		exists, checkErr := l.rowExists(ctx, tx, opRegisterCard, l.cardNaturalKeyStmt(*card))
		if checkErr != nil {
			return checkErr
		}

		if exists {
			return library.ErrCardAlreadyExists
		}

		insertStmt := l.builder().
			Insert(l.cardTable).
			Rows(goqu.Record{
				colName:       card.Name,
				colDepartment: card.Department,
				colType:       string(card.Type),
			}).
			Returning(goqu.C(colCardID))

		id, insertErr := l.insertReturningID(ctx, tx, opRegisterCard, insertStmt)
		if insertErr != nil {
			return insertErr
		}

		card.CardID = id

		return nil
	})
}

// ModifyCard updates all mutable fields of the card. It fails with
// library.ErrCardNotFound if the identity is absent and with
// library.ErrCardAlreadyExists if another card already carries the same
// natural-key tuple.
func (l Library) ModifyCard(ctx context.Context, card library.Card) error {
	if validateErr := card.Validate(); validateErr != nil {
		return validateErr
	}

	return l.withinTransaction(ctx, opModifyCard, func(tx adapters.DBTx) error {
		exists, checkErr := l.rowExists(ctx, tx, opModifyCard, l.cardByIDStmt(card.CardID))
		if checkErr != nil {
			return checkErr
		}

		if !exists {
			return library.ErrCardNotFound
		}

		duplicateStmt := l.cardNaturalKeyStmt(card).
			Where(goqu.C(colCardID).Neq(card.CardID))

		duplicate, duplicateErr := l.rowExists(ctx, tx, opModifyCard, duplicateStmt)
		if duplicateErr != nil {
			return duplicateErr
		}

		if duplicate {
			return library.ErrCardAlreadyExists
		}

		updateStmt := l.builder().
			Update(l.cardTable).
			Set(goqu.Record{
				colName:       card.Name,
				colDepartment: card.Department,
				colType:       string(card.Type),
			}).
			Where(goqu.Ex{colCardID: card.CardID})

		rowsAffected, updateErr := l.runExec(ctx, tx, opModifyCard, updateStmt)
		if updateErr != nil {
			return updateErr
		}

		if rowsAffected == 0 {
			return library.ErrModifyAffectedNoRows
		}

		return nil
	})
}

// RemoveCard deletes the card and all of its borrow records in one
// transaction. It fails with library.ErrCardHasActiveBorrows while any borrow
// of the card is unreturned and with library.ErrCardNotFound if the card is
// absent.
func (l Library) RemoveCard(ctx context.Context, cardID int64) error {
	return l.withinTransaction(ctx, opRemoveCard, func(tx adapters.DBTx) error {
		activeStmt := l.builder().
			From(l.borrowTable).
			Select(goqu.L("1")).
			Where(goqu.Ex{colCardID: cardID, colReturnTime: 0})

		hasActive, checkErr := l.rowExists(ctx, tx, opRemoveCard, activeStmt)
		if checkErr != nil {
			return checkErr
		}

		if hasActive {
			return library.ErrCardHasActiveBorrows
		}

		exists, existsErr := l.rowExists(ctx, tx, opRemoveCard, l.cardByIDStmt(cardID))
		if existsErr != nil {
			return existsErr
		}

		if !exists {
			return library.ErrCardNotFound
		}

		deleteBorrowsStmt := l.builder().
			Delete(l.borrowTable).
			Where(goqu.Ex{colCardID: cardID})

		if _, deleteErr := l.runExec(ctx, tx, opRemoveCard, deleteBorrowsStmt); deleteErr != nil {
			return deleteErr
		}

		deleteCardStmt := l.builder().
			Delete(l.cardTable).
			Where(goqu.Ex{colCardID: cardID})

		rowsAffected, deleteErr := l.runExec(ctx, tx, opRemoveCard, deleteCardStmt)
		if deleteErr != nil {
			return deleteErr
		}

		if rowsAffected == 0 {
			return fmt.Errorf("%w: card delete affected no rows", library.ErrStoreFailure)
		}

		return nil
	})
}

// ListCards returns all registered cards ordered by identity ascending.
func (l Library) ListCards(ctx context.Context) (library.CardList, error) {
	var empty library.CardList

	start := time.Now()

	selectStmt := l.builder().
		From(l.cardTable).
		Select(goqu.C(colCardID), goqu.C(colName), goqu.C(colDepartment), goqu.C(colType)).
		Order(goqu.I(colCardID).Asc())

	rows, queryErr := l.runQuery(ctx, l.db, opListCards, selectStmt)
	if queryErr != nil {
		return empty, queryErr
	}
	defer l.closeRows(ctx, rows)

	cards := make([]library.Card, 0)

	for rows.Next() {
		var card library.Card
		var cardType string

		if scanErr := rows.Scan(&card.CardID, &card.Name, &card.Department, &cardType); scanErr != nil {
			l.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return empty, errors.Join(library.ErrStoreFailure, scanErr)
		}

		card.Type = library.CardType(cardType)
		cards = append(cards, card)
	}

	l.recordDuration(opListCards, time.Since(start))

	return library.CardList{Count: len(cards), Cards: cards}, nil
}

func (l Library) cardNaturalKeyStmt(card library.Card) *goqu.SelectDataset {
	return l.builder().
		From(l.cardTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{
			colName:       card.Name,
			colDepartment: card.Department,
			colType:       string(card.Type),
		})
}

func (l Library) cardByIDStmt(cardID int64) *goqu.SelectDataset {
	return l.builder().
		From(l.cardTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{colCardID: cardID})
}

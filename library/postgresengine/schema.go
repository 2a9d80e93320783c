package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/librarium/library-service-go/library"
	"github.com/librarium/library-service-go/library/postgresengine/internal/adapters"
)

const opResetSchema = "reset_schema"

// ResetSchema drops and recreates the three tables, discarding all state.
// The statements run in one transaction, so a partially applied reset is
// never observable. The declarative constraints created here (natural-key
// uniques, the card type check, the composite borrow key and the cascading
// foreign keys) are the store-side backstop for the invariants the domain
// operations enforce.
func (l Library) ResetSchema(ctx context.Context) error {
	return l.withinTransaction(ctx, opResetSchema, func(tx adapters.DBTx) error {
		for _, statement := range l.schemaStatements() {
			if _, execErr := tx.Exec(ctx, statement); execErr != nil {
				l.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, statement)
				return errors.Join(library.ErrStoreFailure, execErr)
			}
		}

		return nil
	})
}

func (l Library) schemaStatements() []string {
	return []string{
		fmt.Sprintf(`drop table if exists %s`, l.borrowTable),
		fmt.Sprintf(`drop table if exists %s`, l.bookTable),
		fmt.Sprintf(`drop table if exists %s`, l.cardTable),
		fmt.Sprintf(`create table %s (
    card_id serial primary key,
    name varchar(63) not null,
    department varchar(63) not null,
    type char(1) not null,
    unique (department, type, name),
    check (type in ('S', 'T'))
)`, l.cardTable),
		fmt.Sprintf(`create table %s (
    book_id serial primary key,
    category varchar(63) not null,
    title varchar(63) not null,
    press varchar(63) not null,
    publish_year int not null,
    author varchar(63) not null,
    price numeric(7, 2) not null default 0.00,
    stock int not null default 0,
    unique (category, press, author, title, publish_year)
)`, l.bookTable),
		fmt.Sprintf(`create table %s (
    card_id int not null references %s (card_id) on delete cascade on update cascade,
    book_id int not null references %s (book_id) on delete cascade on update cascade,
    borrow_time bigint not null,
    return_time bigint not null default 0,
    primary key (card_id, book_id, borrow_time)
)`, l.borrowTable, l.cardTable, l.bookTable),
	}
}

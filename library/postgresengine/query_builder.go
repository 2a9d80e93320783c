package postgresengine

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/librarium/library-service-go/library"
)

// bookFilterExpressions turns the optional query conditions into a conjunctive
// set of typed clause expressions. Absent conditions contribute nothing.
func bookFilterExpressions(conditions library.BookQueryConditions) []goqu.Expression {
	expressions := make([]goqu.Expression, 0)

	if conditions.Category != nil {
		expressions = append(expressions, goqu.C(colCategory).Eq(*conditions.Category))
	}

	if conditions.Title != nil {
		expressions = append(expressions, goqu.C(colTitle).Like("%"+*conditions.Title+"%"))
	}

	if conditions.Press != nil {
		expressions = append(expressions, goqu.C(colPress).Like("%"+*conditions.Press+"%"))
	}

	if conditions.Author != nil {
		expressions = append(expressions, goqu.C(colAuthor).Like("%"+*conditions.Author+"%"))
	}

	if conditions.MinPrice != nil {
		expressions = append(expressions, goqu.C(colPrice).Gte(*conditions.MinPrice))
	}

	if conditions.MaxPrice != nil {
		expressions = append(expressions, goqu.C(colPrice).Lte(*conditions.MaxPrice))
	}

	if conditions.MinPublishYear != nil {
		expressions = append(expressions, goqu.C(colPublishYear).Gte(*conditions.MinPublishYear))
	}

	if conditions.MaxPublishYear != nil {
		expressions = append(expressions, goqu.C(colPublishYear).Lte(*conditions.MaxPublishYear))
	}

	return expressions
}

// bookOrderExpressions builds the ORDER BY clause for a catalog query.
// Whenever the primary sort column is not the book identity, book_id ascending
// is appended as tie-break so result order is stable across repeated
// identical queries.
func bookOrderExpressions(conditions library.BookQueryConditions) []exp.OrderedExpression {
	primaryColumn := goqu.I(conditions.SortBy.ColumnName())

	primary := primaryColumn.Asc()
	if conditions.Order.IsDescending() {
		primary = primaryColumn.Desc()
	}

	ordered := []exp.OrderedExpression{primary}

	if conditions.SortBy.ColumnName() != string(library.SortByBookID) {
		ordered = append(ordered, goqu.I(colBookID).Asc())
	}

	return ordered
}

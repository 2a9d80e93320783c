package library

// SortColumn is the closed enumeration of book attributes a catalog query may
// be ordered by. The zero value sorts by BookID.
type SortColumn string

const (
	SortByBookID      SortColumn = "book_id"
	SortByCategory    SortColumn = "category"
	SortByTitle       SortColumn = "title"
	SortByPress       SortColumn = "press"
	SortByPublishYear SortColumn = "publish_year"
	SortByAuthor      SortColumn = "author"
	SortByPrice       SortColumn = "price"
	SortByStock       SortColumn = "stock"
)

// ParseSortColumn maps the wire names of the sortable book attributes onto the
// closed SortColumn enumeration. Unknown names fall back to BookID so a query
// always has a deterministic order.
func ParseSortColumn(s string) SortColumn {
	switch s {
	case "bookId", "book_id":
		return SortByBookID
	case "category":
		return SortByCategory
	case "title":
		return SortByTitle
	case "press":
		return SortByPress
	case "publishYear", "publish_year":
		return SortByPublishYear
	case "author":
		return SortByAuthor
	case "price":
		return SortByPrice
	case "stock":
		return SortByStock
	default:
		return SortByBookID
	}
}

// ColumnName returns the storage column the sort key refers to.
func (c SortColumn) ColumnName() string {
	if c == "" {
		return string(SortByBookID)
	}

	return string(c)
}

// SortOrder is the sort direction of a catalog query. The zero value sorts
// ascending.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ParseSortOrder maps the wire names of the sort directions onto the SortOrder
// enumeration. Unknown names fall back to ascending.
func ParseSortOrder(s string) SortOrder {
	switch s {
	case "DESC", "desc", "descending":
		return SortDesc
	default:
		return SortAsc
	}
}

// IsDescending reports whether results should be ordered largest-first.
func (o SortOrder) IsDescending() bool {
	return o == SortDesc
}

// BookQueryConditions is the conjunctive filter of a catalog query. A nil
// field means the predicate is omitted. Category matches exactly; Title, Press
// and Author match as substrings; the Min/Max pairs are inclusive ranges.
//
// Whenever SortBy is not BookID, BookID ascending is appended as a secondary
// sort key so result order is stable across repeated identical queries.
type BookQueryConditions struct {
	Category       *string
	Title          *string
	Press          *string
	Author         *string
	MinPublishYear *int
	MaxPublishYear *int
	MinPrice       *float64
	MaxPrice       *float64
	SortBy         SortColumn
	Order          SortOrder
}

// Str returns a pointer to s, for building query conditions inline.
func Str(s string) *string { return &s }

// Int returns a pointer to i, for building query conditions inline.
func Int(i int) *int { return &i }

// Float returns a pointer to f, for building query conditions inline.
func Float(f float64) *float64 { return &f }

package sqldb

import "strings"

// OrderBy defines a validated ORDER BY item.
type OrderBy struct {
	Column Column
	Desc   bool
}

// Asc and Desc build OrderBy items from names known to be valid identifiers.
func Asc(name string) OrderBy  { return OrderBy{Column: NewColumnOrPanic(name)} }
func Desc(name string) OrderBy { return OrderBy{Column: NewColumnOrPanic(name), Desc: true} }

// String returns the unquoted fragment (without the "ORDER BY" prefix).
func (o OrderBy) String() string {
	if o.Desc {
		return o.Column.Name() + " DESC"
	}
	return o.Column.Name() + " ASC"
}

// OrderByClause renders " ORDER BY a ASC, b DESC" with identifiers quoted for dbType.
// No orders renders nothing.
func OrderByClause(dbType string, orders []OrderBy) string {
	if len(orders) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(16 * len(orders)) // rough prealloc: " column DESC, "
	b.WriteString(" ORDER BY ")
	for i, o := range orders {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(QuoteIdentifier(dbType, o.Column))
		if o.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	return b.String()
}

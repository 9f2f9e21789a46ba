package backend

import "fmt"

// Op is a filter comparison
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpIn  Op = "in"
	OpGte Op = "gte"
	OpLte Op = "lte"
	OpIs  Op = "is"
)

// Filter restricts a column. For OpIn, Value is a []any. For OpIs, Value is nil.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Query describes a read against one table.
// Filters are ANDed; Or filters form a single OR group ANDed with the rest.
type Query struct {
	Table   string
	Filters []Filter
	Or      []Filter
	Order   string
	Desc    bool
	Limit   int
}

// From starts a query on table
func From(table string) Query {
	return Query{Table: table}
}

// Eq adds column = value
func (q Query) Eq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpEq, Value: value})
	return q
}

// Neq adds column != value
func (q Query) Neq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpNeq, Value: value})
	return q
}

// In adds column IN values. An empty list matches nothing.
func (q Query) In(column string, values ...any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpIn, Value: values})
	return q
}

// Gte adds column >= value
func (q Query) Gte(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpGte, Value: value})
	return q
}

// Lte adds column <= value
func (q Query) Lte(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpLte, Value: value})
	return q
}

// IsNull adds column IS NULL
func (q Query) IsNull(column string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpIs})
	return q
}

// OrEq adds column = value to the OR group
func (q Query) OrEq(column string, value any) Query {
	q.Or = append(append([]Filter(nil), q.Or...), Filter{Column: column, Op: OpEq, Value: value})
	return q
}

// OrderBy sorts by column
func (q Query) OrderBy(column string, desc bool) Query {
	q.Order = column
	q.Desc = desc
	return q
}

// Take limits the number of rows
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// Strings converts ids to the []any form In expects
func Strings(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func (q Query) String() string {
	return fmt.Sprintf("%s where=%v or=%v order=%s desc=%v limit=%d", q.Table, q.Filters, q.Or, q.Order, q.Desc, q.Limit)
}

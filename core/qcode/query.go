// Package qcode implements ObjectQuery (C6): the per-resolver query plan
// that groups scalar columns, related-table fetches, and aggregates;
// resolves logical links into physical joins; and emits the family of
// named, parameterized SQL statements one GraphQL selection compiles to.
package qcode

import (
	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/filter"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// Type is the kind of physical join a resolved link becomes.
type Type int

const (
	// Standard marks a top-level query with no parent.
	Standard Type = iota
	// Join marks a one-to-many child or a "_join_" dynamic join: its own
	// filter, sort, and pagination are honored.
	Join
	// Single marks a many-to-one child: filter, sort, and pagination are
	// suppressed since at most one row can ever match.
	Single
)

// SortTerm is one resolved ORDER BY term.
type SortTerm struct {
	Column string
	Dir    dialect.SortDirection
}

// AggregateFunc is one of the five supported aggregate functions.
type AggregateFunc string

const (
	AggCount AggregateFunc = "COUNT"
	AggSum   AggregateFunc = "SUM"
	AggAvg   AggregateFunc = "AVG"
	AggMin   AggregateFunc = "MIN"
	AggMax   AggregateFunc = "MAX"
)

// AggregateColumn aggregates Column on the table reached by following
// LinkPath (one or more link names) from the owning ObjectQuery's table.
type AggregateColumn struct {
	Alias    string // output key suffix; defaults to "_agg" when blank
	Function AggregateFunc
	LinkPath []string
	Column   string
}

// DynamicOn carries the explicit join condition for a "_join_" field,
// whose relation is not present in the schema and must be supplied by
// the caller.
type DynamicOn struct {
	FromColumn      string
	Op              string
	ConnectedColumn string
}

// PendingLink is a child selection awaiting resolution by ConnectLinks.
type PendingLink struct {
	Name      string // link name as it appeared in the GraphQL selection
	Alias     string
	Child     *ObjectQuery
	DynamicOn *DynamicOn
}

// JoinEdge is a PendingLink resolved into a physical relation.
type JoinEdge struct {
	StatementKey    string
	Type            Type
	FromColumn      string // physical column on the owning table
	ConnectedColumn string // physical column on the child table
	Child           *ObjectQuery
	DynamicOn       *DynamicOn
}

// ObjectQuery is the per-table plan for one resolver path.
type ObjectQuery struct {
	Table       *sdata.Table
	TableName   string
	SchemaName  string
	GraphQLName string
	Alias       string
	Path        string
	QueryType   Type

	ScalarColumns    []string
	AggregateColumns []AggregateColumn
	Links            []PendingLink
	Joins            []JoinEdge

	Filter        *filter.Filter
	Sort          []SortTerm
	Limit         *int
	Offset        *int
	IncludeResult bool
}

// New builds a root ObjectQuery against table. Path is seeded from
// KeyName so that ConnectLinks can derive every descendant join's
// statement key as parent.Path + "->" + childKey.
func New(table *sdata.Table, graphqlName, alias string) *ObjectQuery {
	q := &ObjectQuery{
		Table:       table,
		TableName:   table.DBName,
		SchemaName:  table.Schema,
		GraphQLName: graphqlName,
		Alias:       alias,
		QueryType:   Standard,
	}
	q.Path = q.KeyName()
	return q
}

// KeyName is alias ?? graphql_name, the output-map key of a main statement.
func (q *ObjectQuery) KeyName() string {
	if q.Alias != "" {
		return q.Alias
	}
	return q.GraphQLName
}

// AddScalarColumn appends a projected column by its GraphQL name,
// resolving it to the table's physical column name and deduplicating by
// physical name.
func (q *ObjectQuery) AddScalarColumn(graphqlName string) error {
	col, ok := q.Table.ColumnByGraphQLName(graphqlName)
	if !ok {
		return schemaLookupErr("column", graphqlName, q.TableName)
	}
	for _, existing := range q.ScalarColumns {
		if existing == col.DBName {
			return nil
		}
	}
	q.ScalarColumns = append(q.ScalarColumns, col.DBName)
	return nil
}

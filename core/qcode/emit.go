package qcode

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/filter"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// AddSQLParameterized emits the named statement family for q (and
// recursively for every resolved join and aggregate) into sqls, sharing
// params across every emitted statement.
func (q *ObjectQuery) AddSQLParameterized(schema *sdata.Schema, dia dialect.Dialect, sqls map[string]param.Sql, params *param.Collection) error {
	alias := q.TableName

	filterSQL, err := filter.GetFilterSQLParameterized(q.Filter, schema, dia, params, alias)
	if err != nil {
		return err
	}

	cols, err := q.projectionColumns()
	if err != nil {
		return err
	}
	projected := escapeList(dia, cols)

	sortTerms, err := q.dialectSort()
	if err != nil {
		return err
	}
	pagination := dia.Pagination(sortTerms, q.Offset, q.Limit)

	main := param.New(fmt.Sprintf("SELECT %s FROM %s", projected, dia.TableReference(q.SchemaName, q.TableName)), nil)
	main = main.AppendSql(filterSQL)
	main = main.Append(pagination)
	sqls[q.KeyName()] = main

	if q.IncludeResult {
		count := param.New(fmt.Sprintf("SELECT COUNT(*) FROM %s", dia.TableReference(q.SchemaName, q.TableName)), nil)
		count = count.AppendSql(filterSQL)
		sqls[q.KeyName()+"=>count"] = count
	}

	for _, edge := range q.Joins {
		sql, err := q.toConnectedSQL(schema, dia, params, edge)
		if err != nil {
			return err
		}
		sqls[edge.StatementKey] = sql
		if err := edge.Child.AddSQLParameterized(schema, dia, sqls, params); err != nil {
			return err
		}
	}

	for _, agg := range q.AggregateColumns {
		key := q.Path + "=>agg_" + aggAlias(agg)
		sql, err := q.toAggregateSQL(schema, dia, params, agg)
		if err != nil {
			return err
		}
		sqls[key] = sql
	}

	return nil
}

func aggAlias(agg AggregateColumn) string {
	if agg.Alias != "" {
		return agg.Alias
	}
	return "_agg"
}

// projectionColumns returns the main SELECT's column list: scalar
// columns deduplicated by physical name, plus every join's FromColumn
// (needed so resolvers can stitch child statements back to their
// parent rows), minus any meta ("__typename"-style) pseudo-columns.
func (q *ObjectQuery) projectionColumns() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if strings.HasPrefix(name, "__") {
			return
		}
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, c := range q.ScalarColumns {
		add(c)
	}
	for _, e := range q.Joins {
		add(e.FromColumn)
	}
	if len(out) == 0 {
		return nil, executionErr("query %s projects no columns", q.KeyName())
	}
	return out, nil
}

func (q *ObjectQuery) dialectSort() ([]dialect.SortColumn, error) {
	out := make([]dialect.SortColumn, len(q.Sort))
	for i, s := range q.Sort {
		out[i] = dialect.SortColumn{Column: s.Column, Dir: s.Dir}
	}
	return out, nil
}

func escapeList(dia dialect.Dialect, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = dia.EscapeIdentifier(c)
	}
	return strings.Join(parts, ", ")
}

// toConnectedSQL builds the "pin set plus join" statement described in
// spec.md §4.6: a DISTINCT subquery constrained to the parent's own
// filter, joined to the child table. A Join-typed edge also carries the
// child's own filter, sort, and pagination; a Single-typed edge
// suppresses all three since at most one row can match.
func (q *ObjectQuery) toConnectedSQL(schema *sdata.Schema, dia dialect.Dialect, params *param.Collection, edge JoinEdge) (param.Sql, error) {
	parentFilterSQL, err := filter.GetFilterSQLParameterized(q.Filter, schema, dia, params, q.TableName)
	if err != nil {
		return param.Empty, err
	}

	pinSet := param.New(fmt.Sprintf("SELECT DISTINCT %s AS JoinId FROM %s",
		dia.EscapeIdentifier(edge.FromColumn),
		dia.TableReference(q.SchemaName, q.TableName)), nil)
	pinSet = pinSet.AppendSql(parentFilterSQL)

	child := edge.Child
	cols, err := child.projectionColumns()
	if err != nil {
		return param.Empty, err
	}
	childProjection := make([]string, len(cols))
	for i, c := range cols {
		childProjection[i] = "b." + dia.EscapeIdentifier(c)
	}

	op := "="
	if edge.DynamicOn != nil {
		op = dia.Operator(edge.DynamicOn.Op)
	}

	sql := param.New(fmt.Sprintf("SELECT a.JoinId AS src_id, %s FROM (%s) a INNER JOIN %s b ON a.JoinId %s b.%s",
		strings.Join(childProjection, ", "),
		pinSet.Text,
		dia.TableReference(child.SchemaName, child.TableName),
		op,
		dia.EscapeIdentifier(edge.ConnectedColumn),
	), pinSet.Params)

	if edge.Type == Join {
		childFilterSQL, err := filter.GetFilterSQLParameterized(child.Filter, schema, dia, params, "b")
		if err != nil {
			return param.Empty, err
		}
		sql = sql.AppendSql(childFilterSQL)
		sort, err := child.dialectSort()
		if err != nil {
			return param.Empty, err
		}
		sql = sql.Append(dia.Pagination(sort, child.Offset, child.Limit))
	}

	return sql, nil
}

// toAggregateSQL aggregates agg.Column on the table reached by following
// agg.LinkPath from q, grouping by the JoinId that ties each aggregated
// row back to its owning row in q. Successive hops chain successive
// INNER JOINs, each joining the prior hop's alias to the next table on
// that link's column pair.
func (q *ObjectQuery) toAggregateSQL(schema *sdata.Schema, dia dialect.Dialect, params *param.Collection, agg AggregateColumn) (param.Sql, error) {
	if len(agg.LinkPath) == 0 {
		return param.Empty, executionErr("aggregate %s has no relation path", agg.Column)
	}

	cur := q.Table
	curAlias := "a0"
	from := fmt.Sprintf(" FROM %s %s", dia.TableReference(q.SchemaName, q.TableName), dia.EscapeIdentifier(curAlias))

	var targetAlias string
	for i, linkName := range agg.LinkPath {
		nextAlias := fmt.Sprintf("a%d", i+1)
		var fromCol, toCol, nextTable, nextSchema string
		if ml, ok := cur.MultiLink(linkName); ok {
			fromCol, toCol = ml.ParentCol, ml.ChildCol
			t, ok := schema.TableByDBName(ml.ChildTable)
			if !ok {
				return param.Empty, schemaLookupErr("table", ml.ChildTable, cur.DBName)
			}
			nextTable, nextSchema = t.DBName, t.Schema
			cur = t
		} else if sl, ok := cur.SingleLink(linkName); ok {
			fromCol, toCol = sl.ChildCol, sl.ParentCol
			t, ok := schema.TableByDBName(sl.ParentTable)
			if !ok {
				return param.Empty, schemaLookupErr("table", sl.ParentTable, cur.DBName)
			}
			nextTable, nextSchema = t.DBName, t.Schema
			cur = t
		} else {
			return schemaLookupFail(linkName, cur.DBName)
		}

		from += fmt.Sprintf(" INNER JOIN %s %s ON %s.%s = %s.%s",
			dia.TableReference(nextSchema, nextTable), dia.EscapeIdentifier(nextAlias),
			dia.EscapeIdentifier(curAlias), dia.EscapeIdentifier(fromCol),
			dia.EscapeIdentifier(nextAlias), dia.EscapeIdentifier(toCol),
		)
		curAlias = nextAlias
		targetAlias = nextAlias
	}

	targetCol, ok := cur.ColumnByGraphQLName(agg.Column)
	if !ok {
		return param.Empty, schemaLookupErr("column", agg.Column, cur.DBName)
	}

	aggExpr := fmt.Sprintf("%s(%s.%s)", string(agg.Function), dia.EscapeIdentifier(targetAlias), dia.EscapeIdentifier(targetCol.DBName))
	rootJoinCol := pkOrFirstColumn(q.Table)
	text := fmt.Sprintf("SELECT %s.%s AS JoinId, %s AS value%s GROUP BY %s.%s",
		dia.EscapeIdentifier("a0"), dia.EscapeIdentifier(rootJoinCol), aggExpr, from,
		dia.EscapeIdentifier("a0"), dia.EscapeIdentifier(rootJoinCol))

	return param.New(text, nil), nil
}

func schemaLookupFail(linkName, table string) (param.Sql, error) {
	return param.Empty, schemaLookupErr("link", linkName, table)
}

func pkOrFirstColumn(t *sdata.Table) string {
	pk := t.PrimaryKeyColumns()
	if len(pk) > 0 {
		return pk[0].DBName
	}
	cols := t.Columns()
	if len(cols) > 0 {
		return cols[0].DBName
	}
	return "id"
}

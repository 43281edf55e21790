// Package pivot implements PivotPlanner (C8): turning an observed list of
// pivot-column values into either a dialect-native PIVOT statement (SQL
// Server) or a portable CASE-WHEN cross-tab, after validating the request
// against the owning table.
package pivot

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/bifrostql/core/compileerr"
	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/filter"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/qcode"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// DefaultNullLabel is the identifier a nil pivot value is mapped to when
// the caller does not supply one.
const DefaultNullLabel = "_null_"

// Request describes one pivot compile: the table being pivoted, the
// column whose distinct values become output columns, the value column
// being aggregated into them, the aggregate function, and the columns the
// result is grouped by.
type Request struct {
	Table          *sdata.Table
	PivotColumn    string
	ValueColumn    string
	GroupByColumns []string
	Aggregate      qcode.AggregateFunc
	Filter         *filter.Filter
	NullLabel      string
}

// Planner binds pivot planning to a schema, for relation-aware filter
// rendering inside the generated subqueries.
type Planner struct {
	Schema *sdata.Schema
}

// NewPlanner binds a Planner to schema.
func NewPlanner(schema *sdata.Schema) *Planner {
	return &Planner{Schema: schema}
}

// DistinctValuesSQL renders the first step of a pivot compile: the
// observed-values probe a caller executes before calling Plan.
// SELECT DISTINCT [pivot] FROM <table> [WHERE ...] ORDER BY [pivot].
func (p *Planner) DistinctValuesSQL(dia dialect.Dialect, req Request, params *param.Collection) (param.Sql, error) {
	col, err := p.validateColumn(req.Table, req.PivotColumn)
	if err != nil {
		return param.Empty, err
	}

	filterSQL, err := filter.GetFilterSQLParameterized(req.Filter, p.Schema, dia, params, req.Table.DBName)
	if err != nil {
		return param.Empty, err
	}

	escaped := dia.EscapeIdentifier(col.DBName)
	sql := param.New(fmt.Sprintf("SELECT DISTINCT %s FROM %s", escaped, dia.TableReference(req.Table.Schema, req.Table.DBName)), nil)
	sql = sql.AppendSql(filterSQL)
	sql = sql.Append(fmt.Sprintf(" ORDER BY %s", escaped))
	return sql, nil
}

// Plan validates req and emits the cross-tab statement for the observed
// pivot values. An empty values list degrades to a plain grouped select
// with no pivoted columns, per spec.
func (p *Planner) Plan(dia dialect.Dialect, req Request, values []interface{}, params *param.Collection) (param.Sql, error) {
	if err := p.validate(req); err != nil {
		return param.Empty, err
	}
	nullLabel := req.NullLabel
	if nullLabel == "" {
		nullLabel = DefaultNullLabel
	}

	if len(values) == 0 {
		return p.planEmpty(dia, req, params)
	}

	if dia.Name() == dialect.SqlServer {
		return p.planNativePivot(dia, req, values, nullLabel, params)
	}
	return p.planCaseWhen(dia, req, values, nullLabel, params)
}

func (p *Planner) validate(req Request) error {
	if _, err := p.validateColumn(req.Table, req.PivotColumn); err != nil {
		return err
	}
	if _, err := p.validateColumn(req.Table, req.ValueColumn); err != nil {
		return err
	}
	for _, g := range req.GroupByColumns {
		if _, err := p.validateColumn(req.Table, g); err != nil {
			return err
		}
		if strings.EqualFold(g, req.PivotColumn) {
			return compileerr.New(compileerr.InvalidArgument, "pivot column %s cannot also be a group-by column", req.PivotColumn)
		}
	}
	switch req.Aggregate {
	case qcode.AggCount, qcode.AggSum, qcode.AggAvg, qcode.AggMin, qcode.AggMax:
	default:
		return compileerr.New(compileerr.NotSupported, "unsupported pivot aggregate function: %s", req.Aggregate)
	}
	return nil
}

func (p *Planner) validateColumn(table *sdata.Table, name string) (*sdata.Column, error) {
	if col, ok := table.ColumnByGraphQLName(name); ok {
		return col, nil
	}
	return nil, compileerr.New(compileerr.SchemaLookup, "column %s not found on table %s", name, table.DBName)
}

func (p *Planner) planEmpty(dia dialect.Dialect, req Request, params *param.Collection) (param.Sql, error) {
	groupCols := p.escapedGroupBy(dia, req)
	filterSQL, err := filter.GetFilterSQLParameterized(req.Filter, p.Schema, dia, params, req.Table.DBName)
	if err != nil {
		return param.Empty, err
	}
	sql := param.New(fmt.Sprintf("SELECT %s FROM %s", strings.Join(groupCols, ", "),
		dia.TableReference(req.Table.Schema, req.Table.DBName)), nil)
	sql = sql.AppendSql(filterSQL)
	sql = sql.Append(fmt.Sprintf(" GROUP BY %s", strings.Join(groupCols, ", ")))
	return sql, nil
}

// planNativePivot emits SQL Server's PIVOT operator: an inner subquery
// recasts the pivot column to NVARCHAR and substitutes nullLabel for a
// NULL observation, and the outer PIVOT clause fans it out into one
// column per observed value.
func (p *Planner) planNativePivot(dia dialect.Dialect, req Request, values []interface{}, nullLabel string, params *param.Collection) (param.Sql, error) {
	pivotCol, _ := req.Table.ColumnByGraphQLName(req.PivotColumn)
	valueCol, _ := req.Table.ColumnByGraphQLName(req.ValueColumn)
	groupCols := p.escapedGroupBy(dia, req)

	filterSQL, err := filter.GetFilterSQLParameterized(req.Filter, p.Schema, dia, params, req.Table.DBName)
	if err != nil {
		return param.Empty, err
	}

	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = dia.EscapeIdentifier(labelFor(v, nullLabel))
	}

	inner := param.New(fmt.Sprintf(
		"SELECT %s, %s, ISNULL(CAST(%s AS NVARCHAR(MAX)), '%s') AS __pivot_col FROM %s",
		strings.Join(groupCols, ", "),
		dia.EscapeIdentifier(valueCol.DBName),
		dia.EscapeIdentifier(pivotCol.DBName),
		nullLabel,
		dia.TableReference(req.Table.Schema, req.Table.DBName),
	), nil)
	inner = inner.AppendSql(filterSQL)

	outer := fmt.Sprintf("SELECT %s, %s FROM (%s) src PIVOT (%s(%s) FOR __pivot_col IN (%s)) piv",
		strings.Join(groupCols, ", "),
		strings.Join(labels, ", "),
		inner.Text,
		string(req.Aggregate),
		dia.EscapeIdentifier(valueCol.DBName),
		strings.Join(labels, ", "),
	)
	return param.New(outer, inner.Params), nil
}

// planCaseWhen emits the portable cross-tab fallback: one aggregate of a
// CASE expression per observed value, bound with a real parameter for
// every non-null value and IS NULL for the null bucket.
func (p *Planner) planCaseWhen(dia dialect.Dialect, req Request, values []interface{}, nullLabel string, params *param.Collection) (param.Sql, error) {
	pivotCol, _ := req.Table.ColumnByGraphQLName(req.PivotColumn)
	valueCol, _ := req.Table.ColumnByGraphQLName(req.ValueColumn)
	groupCols := p.escapedGroupBy(dia, req)
	pivotRef := dia.EscapeIdentifier(pivotCol.DBName)
	valueRef := dia.EscapeIdentifier(valueCol.DBName)

	selectCols := append([]string(nil), groupCols...)
	var allParams []param.Param
	for _, v := range values {
		label := labelFor(v, nullLabel)
		var cond string
		if v == nil {
			cond = pivotRef + " IS NULL"
		} else {
			ref := params.AddOne(v)
			allParams = append(allParams, param.Param{Name: ref, Value: v})
			cond = pivotRef + " = " + ref
		}
		selectCols = append(selectCols, fmt.Sprintf("%s(CASE WHEN %s THEN %s END) AS %s",
			string(req.Aggregate), cond, valueRef, dia.EscapeIdentifier(label)))
	}

	filterSQL, err := filter.GetFilterSQLParameterized(req.Filter, p.Schema, dia, params, req.Table.DBName)
	if err != nil {
		return param.Empty, err
	}

	sql := param.New(fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectCols, ", "),
		dia.TableReference(req.Table.Schema, req.Table.DBName)), allParams)
	sql = sql.AppendSql(filterSQL)
	sql = sql.Append(fmt.Sprintf(" GROUP BY %s", strings.Join(groupCols, ", ")))
	return sql, nil
}

func (p *Planner) escapedGroupBy(dia dialect.Dialect, req Request) []string {
	out := make([]string, len(req.GroupByColumns))
	for i, g := range req.GroupByColumns {
		col, _ := req.Table.ColumnByGraphQLName(g)
		out[i] = dia.EscapeIdentifier(col.DBName)
	}
	return out
}

func labelFor(v interface{}, nullLabel string) string {
	if v == nil {
		return nullLabel
	}
	return fmt.Sprintf("%v", v)
}

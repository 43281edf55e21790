package filter

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/bifrostql/core/compileerr"
	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// render carries the state one ToSQL call threads through recursion:
// the schema (for relation lookups), the target dialect, and the shared
// parameter universe. The alias the owning table is currently rendered
// under is passed alongside each call.
type render struct {
	schema *sdata.Schema
	dia    dialect.Dialect
	params *param.Collection
}

// ToSQL lowers f to parameterized SQL against schema and dialect,
// rendering column references under tableAlias (defaults to the owning
// table's physical name when blank). It returns two fragments: joins,
// any INNER JOIN text a Relation node requires, and where, the boolean
// predicate itself. Callers that only want the predicate should use
// GetFilterSQLParameterized, which stitches both into one value.
func (f *Filter) ToSQL(schema *sdata.Schema, dia dialect.Dialect, params *param.Collection, tableAlias string) (joins param.Sql, where param.Sql, err error) {
	if f == nil {
		return param.Empty, param.Empty, nil
	}
	r := &render{schema: schema, dia: dia, params: params}
	return r.render(f, tableAlias)
}

// GetFilterSQLParameterized renders f and prefixes " WHERE ", inlining any
// relation-induced joins ahead of the WHERE body.
func GetFilterSQLParameterized(f *Filter, schema *sdata.Schema, dia dialect.Dialect, params *param.Collection, tableAlias string) (param.Sql, error) {
	if f == nil {
		return param.Empty, nil
	}
	joins, where, err := f.ToSQL(schema, dia, params, tableAlias)
	if err != nil {
		return param.Empty, err
	}
	return joins.AppendSql(param.New(" WHERE ", nil)).AppendSql(where), nil
}

func (r *render) render(f *Filter, alias string) (param.Sql, param.Sql, error) {
	switch f.Kind {
	case KindColumn:
		s, err := r.renderColumn(f, alias)
		return param.Empty, s, err

	case KindAnd, KindOr:
		return r.renderBool(f, alias)

	case KindRelation:
		return r.renderRelation(f, alias)

	default:
		return param.Empty, param.Empty, compileerr.New(compileerr.InvalidFilter, "unknown filter kind")
	}
}

func (r *render) renderBool(f *Filter, alias string) (param.Sql, param.Sql, error) {
	joinAcc := param.Empty
	parts := make([]param.Sql, 0, len(f.Children))
	for _, c := range f.Children {
		cj, cw, err := r.render(c, alias)
		if err != nil {
			return param.Empty, param.Empty, err
		}
		joinAcc = joinAcc.AppendSql(cj)
		parts = append(parts, param.New("(", nil).AppendSql(cw).Append(")"))
	}

	sep := " AND "
	if f.Kind == KindOr {
		sep = " OR "
	}

	acc := param.New("(", nil)
	for i, p := range parts {
		if i > 0 {
			acc = acc.Append(sep)
		}
		acc = acc.AppendSql(p)
	}
	acc = acc.Append(")")
	return joinAcc, acc, nil
}

func (r *render) renderColumn(f *Filter, alias string) (param.Sql, error) {
	if alias == "" {
		alias = f.Table
	}
	colRef := r.dia.EscapeIdentifier(alias) + "." + r.dia.EscapeIdentifier(f.Column)

	switch f.Op {
	case OpIsNull:
		return param.New(colRef+" IS NULL", nil), nil
	case OpIsNotNull:
		return param.New(colRef+" IS NOT NULL", nil), nil
	case OpEq:
		if f.Value == nil {
			return param.New(colRef+" IS NULL", nil), nil
		}
	case OpNeq:
		if f.Value == nil {
			return param.New(colRef+" IS NOT NULL", nil), nil
		}
	}

	switch f.Op {
	case OpIn, OpNin:
		values, ok := toSlice(f.Value)
		if !ok {
			return param.Empty, compileerr.New(compileerr.InvalidFilter, "%s expects a list value", f.Op)
		}
		list, ps := r.addMany(values)
		sql := fmt.Sprintf("%s %s (%s)", colRef, r.dia.Operator(string(f.Op)), list)
		return param.New(sql, ps), nil

	case OpBetween, OpNBetween:
		values, ok := toSlice(f.Value)
		if !ok || len(values) != 2 {
			return param.Empty, compileerr.New(compileerr.InvalidFilter, "%s expects exactly 2 values", f.Op)
		}
		p1, ps1 := r.addOne(values[0])
		p2, ps2 := r.addOne(values[1])
		sql := fmt.Sprintf("%s %s %s AND %s", colRef, r.dia.Operator(string(f.Op)), p1, p2)
		return param.New(sql, []param.Param{ps1, ps2}), nil

	case OpContains, OpNContains, OpStartsWith, OpEndsWith, OpLike, OpNLike:
		p, ps := r.addOne(f.Value)
		kind := likeKindFor(f.Op)
		sql := fmt.Sprintf("%s %s %s", colRef, r.dia.Operator(string(f.Op)), r.dia.LikePattern(p, kind))
		return param.New(sql, []param.Param{ps}), nil

	default:
		p, ps := r.addOne(f.Value)
		sql := fmt.Sprintf("%s %s %s", colRef, r.dia.Operator(string(f.Op)), p)
		return param.New(sql, []param.Param{ps}), nil
	}
}

func likeKindFor(op Op) dialect.LikeKind {
	switch op {
	case OpContains, OpNContains:
		return dialect.LikeContains
	case OpStartsWith:
		return dialect.LikeStartsWith
	case OpEndsWith:
		return dialect.LikeEndsWith
	default:
		return dialect.LikePlain
	}
}

func (r *render) addOne(value interface{}) (string, param.Param) {
	name := r.params.AddOne(value)
	return name, param.Param{Name: name, Value: value}
}

func (r *render) addMany(values []interface{}) (string, []param.Param) {
	ps := make([]param.Param, len(values))
	names := make([]string, len(values))
	for i, v := range values {
		n := r.params.AddOne(v)
		names[i] = n
		ps[i] = param.Param{Name: n, Value: v}
	}
	return strings.Join(names, ", "), ps
}

func toSlice(v interface{}) ([]interface{}, bool) {
	s, ok := v.([]interface{})
	return s, ok
}

// renderRelation lowers a Relation node into an INNER JOIN against a
// "pin set" subquery: SELECT DISTINCT <related table's link column> AS
// joinid FROM <related table> [WHERE <nested filter>], joined back on the
// owning table's link column (the foreign key for a single link, the
// referenced key for a multi link). Nested Relation filters compound into
// nested subqueries the same way.
func (r *render) renderRelation(f *Filter, alias string) (param.Sql, param.Sql, error) {
	if alias == "" {
		alias = f.Table
	}
	owner, ok := r.ownerTableForLink(f, alias)
	if !ok {
		return param.Empty, param.Empty, compileerr.New(compileerr.SchemaLookup, "unable to find link %s", f.LinkName)
	}

	var relatedTable, childFK, parentKey string
	if sl, ok := owner.SingleLink(f.LinkName); ok {
		relatedTable = sl.ParentTable
		childFK = sl.ChildCol  // on owning (child) table
		parentKey = sl.ParentCol // on related (parent) table
	} else if ml, ok := owner.MultiLink(f.LinkName); ok {
		relatedTable = ml.ChildTable
		childFK = ml.ParentCol   // on owning (parent) table
		parentKey = ml.ChildCol  // on related (child) table
	} else {
		return param.Empty, param.Empty, compileerr.New(compileerr.SchemaLookup, "unable to find link %s", f.LinkName)
	}

	related, ok := r.schema.TableByDBName(relatedTable)
	if !ok {
		return param.Empty, param.Empty, compileerr.New(compileerr.SchemaLookup, "unknown table: %s", relatedTable)
	}

	innerJoins, innerWhere, err := r.render(f.Inner, related.DBName)
	if err != nil {
		return param.Empty, param.Empty, err
	}

	sub := innerJoins.Prepend(r.dia.TableReference(related.Schema, related.DBName))
	sub = sub.Prepend(fmt.Sprintf("SELECT DISTINCT %s AS joinid FROM ",
		r.dia.EscapeIdentifier(parentKey)))
	if innerWhere.Text != "" {
		sub = sub.Append(" WHERE ").AppendSql(innerWhere)
	}

	joinAlias := alias + "_" + f.LinkName
	joinSQL := param.New(fmt.Sprintf(" INNER JOIN (%s) %s ON %s.joinid = %s.%s",
		sub.Text,
		r.dia.EscapeIdentifier(joinAlias),
		r.dia.EscapeIdentifier(joinAlias),
		r.dia.EscapeIdentifier(alias),
		r.dia.EscapeIdentifier(childFK),
	), sub.Params)

	whereSQL := param.New(fmt.Sprintf("%s.joinid IS NOT NULL", r.dia.EscapeIdentifier(joinAlias)), nil)
	return joinSQL, whereSQL, nil
}

func (r *render) ownerTableForLink(f *Filter, alias string) (*sdata.Table, bool) {
	if t, ok := r.schema.TableByDBName(f.Table); ok {
		return t, true
	}
	// f.Table may be unset on a Relation node reached via recursion from a
	// bool combinator; fall back to the alias, which tracks the owning
	// table name through And/Or/Relation nesting.
	if t, ok := r.schema.TableByDBName(alias); ok {
		return t, true
	}
	return nil, false
}

// Package filter implements the boolean predicate algebra (C5) and the
// primary-key filter helper (C9): parsing a GraphQL-argument value into a
// typed tree and lowering that tree to parameterized SQL against a
// schema and dialect.
package filter

import (
	"sort"
	"strings"

	"github.com/standardbeagle/bifrostql/core/compileerr"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// Kind distinguishes the four Filter variants.
type Kind int

const (
	KindColumn Kind = iota
	KindRelation
	KindAnd
	KindOr
)

// Op is a column operator token, always in its GraphQL-facing "_foo" form.
type Op string

const (
	OpEq         Op = "_eq"
	OpNeq        Op = "_neq"
	OpLt         Op = "_lt"
	OpLte        Op = "_lte"
	OpGt         Op = "_gt"
	OpGte        Op = "_gte"
	OpContains   Op = "_contains"
	OpNContains  Op = "_ncontains"
	OpStartsWith Op = "_starts_with"
	OpEndsWith   Op = "_ends_with"
	OpLike       Op = "_like"
	OpNLike      Op = "_nlike"
	OpIn         Op = "_in"
	OpNin        Op = "_nin"
	OpBetween    Op = "_between"
	OpNBetween   Op = "_nbetween"
	OpIsNull     Op = "_is_null"
	OpIsNotNull  Op = "_is_not_null"
)

var validOps = map[Op]bool{
	OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpContains: true, OpNContains: true, OpStartsWith: true, OpEndsWith: true,
	OpLike: true, OpNLike: true, OpIn: true, OpNin: true,
	OpBetween: true, OpNBetween: true, OpIsNull: true, OpIsNotNull: true,
}

// Filter is a tagged-variant predicate node. Only the fields relevant to
// Kind are populated; this mirrors how the GraphQL argument layer hands
// the compiler a dynamically-typed value (map[string]interface{} /
// []interface{} / scalars / nil) and is parsed with a type switch rather
// than reflection.
type Filter struct {
	Kind Kind

	// KindColumn
	Table  string // physical table name the column belongs to
	Column string // physical column name
	Op     Op
	Value  interface{}

	// KindRelation
	LinkName string
	Inner    *Filter

	// KindAnd / KindOr
	Children []*Filter
}

// FromObject parses raw (a decoded GraphQL filter argument: nested maps,
// lists, and scalars) into a Filter tree scoped to owningTable. schema
// resolves the related table when a key names a link.
func FromObject(raw interface{}, owningTable *sdata.Table, schema *sdata.Schema) (*Filter, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, compileerr.New(compileerr.InvalidFilter, "Invalid filter object")
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// The Go map does not preserve GraphQL argument order; sort for a
	// deterministic compile instead of depending on map iteration order.
	sort.Strings(keys)

	var parsed []*Filter
	for _, k := range keys {
		f, err := fromObjectKey(k, m[k], owningTable, schema)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, f)
	}

	switch len(parsed) {
	case 0:
		return nil, compileerr.New(compileerr.InvalidFilter, "Invalid filter object")
	case 1:
		return parsed[0], nil
	default:
		return &Filter{Kind: KindAnd, Children: parsed}, nil
	}
}

func fromObjectKey(k string, v interface{}, table *sdata.Table, schema *sdata.Schema) (*Filter, error) {
	switch strings.ToLower(k) {
	case "and", "or":
		arr, ok := v.([]interface{})
		if !ok {
			return nil, compileerr.New(compileerr.InvalidFilter, "Invalid filter object")
		}
		children := make([]*Filter, 0, len(arr))
		for _, item := range arr {
			f, err := FromObject(item, table, schema)
			if err != nil {
				return nil, err
			}
			children = append(children, f)
		}
		kind := KindAnd
		if strings.ToLower(k) == "or" {
			kind = KindOr
		}
		return &Filter{Kind: kind, Children: children}, nil
	}

	if col, ok := table.ColumnByGraphQLName(k); ok {
		m, ok := v.(map[string]interface{})
		if !ok || len(m) != 1 {
			return nil, compileerr.New(compileerr.InvalidFilter, "Invalid filter object")
		}
		for opKey, val := range m {
			// An operator outside validOps is kept as given; rendering maps
			// it through dialect.Operator, which falls back to "=".
			op := Op(strings.ToLower(strings.TrimSpace(opKey)))
			return &Filter{Kind: KindColumn, Table: table.DBName, Column: col.DBName, Op: op, Value: val}, nil
		}
	}

	if link, ok := table.SingleLink(k); ok {
		related, ok := schema.TableByDBName(link.ParentTable)
		if !ok {
			return nil, compileerr.New(compileerr.SchemaLookup, "unknown table: %s", link.ParentTable)
		}
		inner, err := FromObject(v, related, schema)
		if err != nil {
			return nil, err
		}
		return &Filter{Kind: KindRelation, Table: table.DBName, LinkName: k, Inner: inner}, nil
	}

	if link, ok := table.MultiLink(k); ok {
		related, ok := schema.TableByDBName(link.ChildTable)
		if !ok {
			return nil, compileerr.New(compileerr.SchemaLookup, "unknown table: %s", link.ChildTable)
		}
		inner, err := FromObject(v, related, schema)
		if err != nil {
			return nil, err
		}
		return &Filter{Kind: KindRelation, Table: table.DBName, LinkName: k, Inner: inner}, nil
	}

	return nil, compileerr.New(compileerr.InvalidFilter, "Invalid filter object")
}

// And combines a and b, flattening when one side is nil so callers never
// need to special-case "no filter yet".
func And(a, b *Filter) *Filter {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return &Filter{Kind: KindAnd, Children: []*Filter{a, b}}
	}
}

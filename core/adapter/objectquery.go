package adapter

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/bifrostql/core/compileerr"
	"github.com/standardbeagle/bifrostql/core/filter"
	"github.com/standardbeagle/bifrostql/core/qcode"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// RequestAdapter lowers a fragment-expanded QueryField tree against schema
// into the qcode.ObjectQuery plan the rest of the compiler runs on.
type RequestAdapter struct {
	Schema *sdata.Schema
}

// NewRequestAdapter binds an adapter to schema.
func NewRequestAdapter(schema *sdata.Schema) *RequestAdapter {
	return &RequestAdapter{Schema: schema}
}

// FromQueryField builds the root ObjectQuery for field against table, then
// recurses into every sub-field, classifying each as a dynamic join, a
// known link, or a scalar column, and resolves every link in the tree
// against schema before returning.
func (a *RequestAdapter) FromQueryField(field *QueryField, table *sdata.Table) (*qcode.ObjectQuery, error) {
	q, err := a.build(field, table)
	if err != nil {
		return nil, err
	}
	if err := q.ConnectLinks(a.Schema); err != nil {
		return nil, err
	}
	return q, nil
}

func (a *RequestAdapter) build(field *QueryField, table *sdata.Table) (*qcode.ObjectQuery, error) {
	q := qcode.New(table, field.Name, field.Alias)

	if err := a.applyArguments(q, field.Arguments, table); err != nil {
		return nil, err
	}

	for _, sub := range field.Fields {
		switch {
		case strings.HasPrefix(sub.Name, "_join_"):
			if err := a.addDynamicJoin(q, sub); err != nil {
				return nil, err
			}

		case hasLink(table, sub.Name):
			child, err := a.buildLinkChild(sub, table)
			if err != nil {
				return nil, err
			}
			q.Links = append(q.Links, qcode.PendingLink{Name: sub.Name, Alias: sub.Alias, Child: child})

		default:
			if err := q.AddScalarColumn(sub.Name); err != nil {
				return nil, err
			}
		}
	}

	return q, nil
}

// buildLinkChild builds the child ObjectQuery for a link sub-field against
// the related table of the owner's single or multi link, so its fields,
// filter, and sort resolve against that table. For any other link the
// owning table is used; ConnectLinks then resolves the join itself.
func (a *RequestAdapter) buildLinkChild(sub *QueryField, owner *sdata.Table) (*qcode.ObjectQuery, error) {
	related := owner
	if ml, ok := owner.MultiLink(sub.Name); ok {
		if t, ok := a.Schema.TableByDBName(ml.ChildTable); ok {
			related = t
		}
	} else if sl, ok := owner.SingleLink(sub.Name); ok {
		if t, ok := a.Schema.TableByDBName(sl.ParentTable); ok {
			related = t
		}
	}
	return a.build(sub, related)
}

func hasLink(table *sdata.Table, name string) bool {
	if _, ok := table.SingleLink(name); ok {
		return true
	}
	if _, ok := table.MultiLink(name); ok {
		return true
	}
	if _, ok := table.ManyToManyLink(name); ok {
		return true
	}
	return false
}

// addDynamicJoin consumes a "_join_<name>" sub-field's "on" argument,
// {table, from, op, to}, and appends a PendingLink carrying an explicit
// DynamicOn condition so ConnectLinks step 3 can wire it without a schema
// relation.
func (a *RequestAdapter) addDynamicJoin(q *qcode.ObjectQuery, sub *QueryField) error {
	onRaw, ok := sub.Arguments["on"]
	if !ok {
		return compileerr.New(compileerr.InvalidArgument, "%s requires an \"on\" argument", sub.Name)
	}
	on, ok := onRaw.(map[string]interface{})
	if !ok {
		return compileerr.New(compileerr.InvalidArgument, "%s.on must be an object", sub.Name)
	}

	tableName, _ := on["table"].(string)
	from, _ := on["from"].(string)
	op, _ := on["op"].(string)
	to, _ := on["to"].(string)
	if tableName == "" || from == "" || to == "" {
		return compileerr.New(compileerr.InvalidArgument, "%s.on requires table, from, and to", sub.Name)
	}
	if op == "" {
		op = "_eq"
	}

	childTable, ok := a.Schema.TableByGraphQLName(tableName)
	if !ok {
		childTable, ok = a.Schema.TableByDBName(tableName)
	}
	if !ok {
		return compileerr.New(compileerr.SchemaLookup, "unknown table: %s", tableName)
	}

	child, err := a.build(sub, childTable)
	if err != nil {
		return err
	}

	q.Links = append(q.Links, qcode.PendingLink{
		Name:  sub.Name,
		Alias: sub.Alias,
		Child: child,
		DynamicOn: &qcode.DynamicOn{
			FromColumn:      from,
			Op:              op,
			ConnectedColumn: to,
		},
	})
	return nil
}

// applyArguments wires filter, sort, limit, offset, and _primaryKey
// arguments into q, merging _primaryKey with any user filter via And.
func (a *RequestAdapter) applyArguments(q *qcode.ObjectQuery, args map[string]interface{}, table *sdata.Table) error {
	var f *filter.Filter

	if raw, ok := args["filter"]; ok {
		parsed, err := filter.FromObject(raw, table, a.Schema)
		if err != nil {
			return err
		}
		f = parsed
	}

	if raw, ok := args["_primaryKey"]; ok {
		values, ok := raw.([]interface{})
		if !ok {
			return compileerr.New(compileerr.InvalidArgument, "_primaryKey must be a list")
		}
		pk, err := filter.FromPrimaryKey(values, table.PrimaryKeyColumns(), table)
		if err != nil {
			return err
		}
		f = filter.And(f, pk)
	}
	q.Filter = f

	if raw, ok := args["sort"]; ok {
		tokens, ok := raw.([]interface{})
		if !ok {
			return compileerr.New(compileerr.InvalidArgument, "sort must be a list")
		}
		for _, t := range tokens {
			s, ok := t.(string)
			if !ok {
				return compileerr.New(compileerr.InvalidArgument, "sort entries must be strings")
			}
			term, err := qcode.ParseSortTerm(table, s)
			if err != nil {
				return err
			}
			q.Sort = append(q.Sort, term)
		}
	}

	if raw, ok := args["limit"]; ok {
		n, err := toInt(raw)
		if err != nil {
			return compileerr.New(compileerr.InvalidArgument, "limit: %v", err)
		}
		q.Limit = &n
	}
	if raw, ok := args["offset"]; ok {
		n, err := toInt(raw)
		if err != nil {
			return compileerr.New(compileerr.InvalidArgument, "offset: %v", err)
		}
		q.Offset = &n
	}

	if raw, ok := args["aggregate"]; ok {
		aggs, ok := raw.([]interface{})
		if !ok {
			return compileerr.New(compileerr.InvalidArgument, "aggregate must be a list")
		}
		for _, item := range aggs {
			ac, err := parseAggregateArg(item)
			if err != nil {
				return err
			}
			q.AggregateColumns = append(q.AggregateColumns, ac)
		}
	}

	return nil
}

func parseAggregateArg(raw interface{}) (qcode.AggregateColumn, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return qcode.AggregateColumn{}, compileerr.New(compileerr.InvalidArgument, "aggregate entry must be an object")
	}
	fnRaw, _ := m["function"].(string)
	fn, err := qcode.ParseAggregateFunc(fnRaw)
	if err != nil {
		return qcode.AggregateColumn{}, err
	}
	column, _ := m["column"].(string)
	if column == "" {
		return qcode.AggregateColumn{}, compileerr.New(compileerr.InvalidArgument, "aggregate entry requires column")
	}
	alias, _ := m["alias"].(string)

	pathRaw, ok := m["linkPath"].([]interface{})
	if !ok || len(pathRaw) == 0 {
		return qcode.AggregateColumn{}, compileerr.New(compileerr.InvalidArgument, "aggregate entry requires a non-empty linkPath")
	}
	path := make([]string, len(pathRaw))
	for i, p := range pathRaw {
		s, ok := p.(string)
		if !ok {
			return qcode.AggregateColumn{}, compileerr.New(compileerr.InvalidArgument, "linkPath entries must be strings")
		}
		path[i] = s
	}

	return qcode.AggregateColumn{Alias: alias, Function: fn, LinkPath: path, Column: column}, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

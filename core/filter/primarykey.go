package filter

import (
	"strings"

	"github.com/standardbeagle/bifrostql/core/compileerr"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// FromPrimaryKey builds a Filter from a positional "_primaryKey: [v1, v2, ...]"
// argument, matching values against keyColumns in declaration order. A nil
// value produces an is_null leaf instead of an eq leaf so the generated
// SQL never compares a key column to a bound NULL with "=".
func FromPrimaryKey(values []interface{}, keyColumns []*sdata.Column, table *sdata.Table) (*Filter, error) {
	if len(keyColumns) == 0 {
		return nil, compileerr.New(compileerr.InvalidArgument, "table %s has no primary key columns", table.DBName)
	}
	if len(values) != len(keyColumns) {
		names := make([]string, len(keyColumns))
		for i, c := range keyColumns {
			names[i] = c.GraphQLName
		}
		return nil, compileerr.New(compileerr.InvalidArgument,
			"_primaryKey expects %d value(s) for columns [%s], got %d",
			len(keyColumns), strings.Join(names, ", "), len(values))
	}

	leaves := make([]*Filter, len(keyColumns))
	for i, c := range keyColumns {
		leaves[i] = leafFor(table.DBName, c.DBName, values[i])
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return &Filter{Kind: KindAnd, Children: leaves}, nil
}

func leafFor(table, column string, value interface{}) *Filter {
	if value == nil {
		return &Filter{Kind: KindColumn, Table: table, Column: column, Op: OpIsNull}
	}
	return &Filter{Kind: KindColumn, Table: table, Column: column, Op: OpEq, Value: value}
}

package qcode

import (
	"strings"

	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

// ParseSortTerm turns a GraphQL sort token ("{col}_asc" / "{col}_desc",
// case-insensitive suffix, case-preserving column) into a resolved
// SortTerm against table. Any other suffix is rejected.
func ParseSortTerm(table *sdata.Table, token string) (SortTerm, error) {
	lower := strings.ToLower(token)
	var dir dialect.SortDirection
	var colToken string
	switch {
	case strings.HasSuffix(lower, "_asc"):
		dir = dialect.Asc
		colToken = token[:len(token)-4]
	case strings.HasSuffix(lower, "_desc"):
		dir = dialect.Desc
		colToken = token[:len(token)-5]
	default:
		return SortTerm{}, notSupportedErr("invalid sort suffix: %s", token)
	}

	col, ok := table.ColumnByGraphQLName(colToken)
	if !ok {
		return SortTerm{}, schemaLookupErr("column", colToken, table.DBName)
	}
	return SortTerm{Column: col.DBName, Dir: dir}, nil
}

package dialect

import (
	"fmt"
	"strings"
)

type sqlServerDialect struct{}

func (sqlServerDialect) Name() Name { return SqlServer }

func (sqlServerDialect) EscapeIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d sqlServerDialect) TableReference(schema, table string) string {
	if strings.TrimSpace(schema) == "" {
		return d.EscapeIdentifier(table)
	}
	return d.EscapeIdentifier(schema) + "." + d.EscapeIdentifier(table)
}

// Pagination always emits a full ORDER BY ... OFFSET ... ROWS clause:
// SQL Server's OFFSET/FETCH requires an ORDER BY, so a query with no sort
// columns falls back to the stable "ORDER BY (SELECT NULL)" idiom.
func (d sqlServerDialect) Pagination(sort []SortColumn, offset, limit *int) string {
	var b strings.Builder
	b.WriteString(" ORDER BY ")
	if len(sort) == 0 {
		b.WriteString("(SELECT NULL)")
	} else {
		for i, s := range sort {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.EscapeIdentifier(s.Column))
			if s.Dir == Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}

	off := 0
	if offset != nil {
		off = *offset
	}
	b.WriteString(fmt.Sprintf(" OFFSET %d ROWS", off))

	if limit == nil || *limit != -1 {
		n := 100
		if limit != nil {
			n = *limit
		}
		b.WriteString(fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", n))
	}
	return b.String()
}

func (sqlServerDialect) ParameterPrefix() string { return "@" }

func (sqlServerDialect) LastInsertedIdentity() string { return "SCOPE_IDENTITY()" }

func (sqlServerDialect) LikePattern(paramRef string, kind LikeKind) string {
	switch kind {
	case LikeContains:
		return "'%' + " + paramRef + " + '%'"
	case LikeStartsWith:
		return paramRef + " + '%'"
	case LikeEndsWith:
		return "'%' + " + paramRef
	default:
		return paramRef
	}
}

func (sqlServerDialect) Operator(op string) string { return operator(op) }

package dialect

import (
	"fmt"
	"strings"
)

type postgresDialect struct{}

func (postgresDialect) Name() Name { return Postgres }

func (postgresDialect) EscapeIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d postgresDialect) TableReference(schema, table string) string {
	if strings.TrimSpace(schema) == "" {
		return d.EscapeIdentifier(table)
	}
	return d.EscapeIdentifier(schema) + "." + d.EscapeIdentifier(table)
}

func (d postgresDialect) Pagination(sort []SortColumn, offset, limit *int) string {
	var b strings.Builder
	if len(sort) > 0 {
		b.WriteString(" ORDER BY ")
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
	if limit == nil || *limit != -1 {
		n := 100
		if limit != nil {
			n = *limit
		}
		b.WriteString(fmt.Sprintf(" LIMIT %d", n))
	}
	if offset != nil && *offset != 0 {
		b.WriteString(fmt.Sprintf(" OFFSET %d", *offset))
	}
	return b.String()
}

func (postgresDialect) ParameterPrefix() string { return "@" }

func (postgresDialect) LastInsertedIdentity() string { return "lastval()" }

func (postgresDialect) LikePattern(paramRef string, kind LikeKind) string {
	switch kind {
	case LikeContains:
		return "'%' || " + paramRef + " || '%'"
	case LikeStartsWith:
		return paramRef + " || '%'"
	case LikeEndsWith:
		return "'%' || " + paramRef
	default:
		return paramRef
	}
}

func (postgresDialect) Operator(op string) string { return operator(op) }

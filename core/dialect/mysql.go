package dialect

import (
	"fmt"
	"strings"
)

type mySqlDialect struct{}

func (mySqlDialect) Name() Name { return MySql }

func (mySqlDialect) EscapeIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d mySqlDialect) TableReference(schema, table string) string {
	if strings.TrimSpace(schema) == "" {
		return d.EscapeIdentifier(table)
	}
	return d.EscapeIdentifier(schema) + "." + d.EscapeIdentifier(table)
}

func (d mySqlDialect) Pagination(sort []SortColumn, offset, limit *int) string {
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

func (mySqlDialect) ParameterPrefix() string { return "@" }

func (mySqlDialect) LastInsertedIdentity() string { return "LAST_INSERT_ID()" }

func (mySqlDialect) LikePattern(paramRef string, kind LikeKind) string {
	switch kind {
	case LikeContains:
		return "CONCAT('%', " + paramRef + ", '%')"
	case LikeStartsWith:
		return "CONCAT(" + paramRef + ", '%')"
	case LikeEndsWith:
		return "CONCAT('%', " + paramRef + ")"
	default:
		return paramRef
	}
}

func (mySqlDialect) Operator(op string) string { return operator(op) }

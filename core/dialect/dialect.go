// Package dialect captures the per-backend lexical and syntactic rules
// (C1) the rest of the compiler renders against: identifier quoting,
// pagination clauses, LIKE concatenation, operator tokens, and identity
// retrieval. Each backend is a zero-sized, stateless singleton, so the
// same *Dialect value is shared freely across every concurrent compile.
package dialect

import "strings"

// Name identifies one of the four supported backends.
type Name string

const (
	SqlServer Name = "sqlserver"
	Postgres  Name = "postgres"
	MySql     Name = "mysql"
	Sqlite    Name = "sqlite"
)

// SortDirection is the direction of one ORDER BY term.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

// SortColumn is one already-resolved ORDER BY term (physical column name,
// not yet escaped).
type SortColumn struct {
	Column string
	Dir    SortDirection
}

// LikeKind selects how a LIKE/NOT LIKE parameter value is wrapped before
// it is compared; the parameter reference itself is always a bound value,
// never concatenated as text in the Go layer.
type LikeKind int

const (
	// LikePlain passes the parameter through unwrapped: the caller's
	// value is expected to already contain any '%' wildcards (_like/_nlike).
	LikePlain LikeKind = iota
	// LikeContains wraps both sides: '%value%' (_contains/_ncontains).
	LikeContains
	// LikeStartsWith wraps the trailing side only: 'value%' (_starts_with).
	LikeStartsWith
	// LikeEndsWith wraps the leading side only: '%value' (_ends_with).
	LikeEndsWith
)

// Dialect is the capability set every SQL emitter renders against.
// Implementations hold no state; they are pure functions grouped by
// receiver for discoverability.
type Dialect interface {
	Name() Name

	// EscapeIdentifier wraps name in the dialect's delimiters.
	EscapeIdentifier(name string) string

	// TableReference renders schema.table, both parts escaped. An empty
	// schema renders the table name alone, with no leading dot.
	TableReference(schema, table string) string

	// Pagination renders the trailing ORDER BY/OFFSET/LIMIT clause.
	// offset and limit are nil when the caller did not specify them;
	// limit == -1 means "no limit" and suppresses the upper bound.
	Pagination(sort []SortColumn, offset, limit *int) string

	// ParameterPrefix returns the token prepended to every generated
	// parameter name ("@" for all four supported backends).
	ParameterPrefix() string

	// LastInsertedIdentity returns the backend's last-identity expression.
	LastInsertedIdentity() string

	// LikePattern renders paramRef (already a bound-parameter reference,
	// e.g. "@p0") wrapped per kind using the dialect's string
	// concatenation idiom.
	LikePattern(paramRef string, kind LikeKind) string

	// Operator maps a GraphQL-facing operator token to its SQL token.
	// Unknown operators default to "=".
	Operator(op string) string
}

// operatorTable is shared by every dialect: the mapping in spec.md §4.1 is
// backend-independent.
var operatorTable = map[string]string{
	"_eq":          "=",
	"_neq":         "!=",
	"_lt":          "<",
	"_lte":         "<=",
	"_gt":          ">",
	"_gte":         ">=",
	"_like":        "LIKE",
	"_contains":    "LIKE",
	"_starts_with": "LIKE",
	"_ends_with":   "LIKE",
	"_nlike":       "NOT LIKE",
	"_ncontains":   "NOT LIKE",
	"_nstarts_with": "NOT LIKE",
	"_nends_with":  "NOT LIKE",
	"_in":          "IN",
	"_nin":         "NOT IN",
	"_between":     "BETWEEN",
	"_nbetween":    "NOT BETWEEN",
}

func operator(op string) string {
	if tok, ok := operatorTable[strings.ToLower(strings.TrimSpace(op))]; ok {
		return tok
	}
	return "="
}

// For returns the singleton Dialect for name, or nil if unrecognized.
func For(name Name) Dialect {
	switch name {
	case SqlServer:
		return sqlServerDialect{}
	case Postgres:
		return postgresDialect{}
	case MySql:
		return mySqlDialect{}
	case Sqlite:
		return sqliteDialect{}
	default:
		return nil
	}
}

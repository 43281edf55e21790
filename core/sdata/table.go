package sdata

import (
	"strings"

	"github.com/gobuffalo/flect"
)

// Table owns the physical and GraphQL identity of one database table, its
// columns (in declaration order), its three relation maps, and a
// metadata bag used by callers that attach deployment-specific hints
// (soft-delete flags, tenant columns, etc. are detected elsewhere and
// only stored here).
type Table struct {
	DBName         string
	GraphQLName    string
	Schema         string
	NormalizedName string

	pkOrder []string
	colsDB  map[string]*Column
	colsGQ  map[string]*Column
	order   []string // DBName insertion order

	singleLinks map[string]SingleLink
	multiLinks  map[string]MultiLink
	m2mLinks    map[string]ManyToManyLink

	meta map[string]string
}

// NewTable creates an empty table. graphqlName defaults to dbName when
// blank.
func NewTable(dbName, graphqlName, schema string) *Table {
	if graphqlName == "" {
		graphqlName = dbName
	}
	return &Table{
		DBName:         dbName,
		GraphQLName:    graphqlName,
		Schema:         schema,
		NormalizedName: flect.Singularize(dbName),
		colsDB:         make(map[string]*Column),
		colsGQ:         make(map[string]*Column),
		singleLinks:    make(map[string]SingleLink),
		multiLinks:     make(map[string]MultiLink),
		m2mLinks:       make(map[string]ManyToManyLink),
		meta:           make(map[string]string),
	}
}

// AddColumn inserts c, keyed by both its physical and GraphQL names. A
// primary-key column is appended to the declaration-ordered PK list.
func (t *Table) AddColumn(c Column) {
	cp := c
	t.order = append(t.order, cp.DBName)
	t.colsDB[key(cp.DBName)] = &cp
	t.colsGQ[key(cp.GraphQLName)] = &cp
	if cp.IsPrimaryKey {
		t.pkOrder = append(t.pkOrder, cp.DBName)
	}
}

// ColumnByDBName looks up a column by its physical name, case-insensitively.
func (t *Table) ColumnByDBName(name string) (*Column, bool) {
	c, ok := t.colsDB[key(name)]
	return c, ok
}

// ColumnByGraphQLName looks up a column by its GraphQL-facing name,
// case-insensitively.
func (t *Table) ColumnByGraphQLName(name string) (*Column, bool) {
	c, ok := t.colsGQ[key(name)]
	return c, ok
}

// Columns returns every column in declaration order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.colsDB[key(n)])
	}
	return out
}

// PrimaryKeyColumns returns the primary-key columns in declaration order.
func (t *Table) PrimaryKeyColumns() []*Column {
	out := make([]*Column, 0, len(t.pkOrder))
	for _, n := range t.pkOrder {
		c, _ := t.ColumnByDBName(n)
		out = append(out, c)
	}
	return out
}

func (t *Table) AddSingleLink(l SingleLink) { t.singleLinks[key(l.Name)] = l }
func (t *Table) AddMultiLink(l MultiLink)   { t.multiLinks[key(l.Name)] = l }
func (t *Table) AddManyToManyLink(l ManyToManyLink) {
	t.m2mLinks[key(l.Name)] = l
}

func (t *Table) SingleLink(name string) (SingleLink, bool) {
	l, ok := t.singleLinks[key(name)]
	return l, ok
}

func (t *Table) MultiLink(name string) (MultiLink, bool) {
	l, ok := t.multiLinks[key(name)]
	return l, ok
}

func (t *Table) ManyToManyLink(name string) (ManyToManyLink, bool) {
	l, ok := t.m2mLinks[key(name)]
	return l, ok
}

// SetMeta stores an opaque string hint under key.
func (t *Table) SetMeta(k, v string) { t.meta[k] = v }

// GetString returns the metadata value stored under key, if any.
func (t *Table) GetString(k string) (string, bool) {
	v, ok := t.meta[k]
	return v, ok
}

// GetBool returns the metadata flag stored under key, or def if absent or
// unparsable as "true"/"false".
func (t *Table) GetBool(k string, def bool) bool {
	v, ok := t.meta[k]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

func key(s string) string { return strings.ToLower(s) }

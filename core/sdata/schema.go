package sdata

import (
	"fmt"

	"github.com/gobuffalo/flect"
)

// Schema is a read-only, once-built index of tables. It is shared freely
// across requests and never mutated by the compiler.
type Schema struct {
	byDB map[string]*Table
	byGQ map[string]*Table
	order []*Table
}

// NewSchema creates an empty schema, ready for AddTable calls during
// construction. Once handed to the compiler it is treated as read-only.
func NewSchema() *Schema {
	return &Schema{byDB: map[string]*Table{}, byGQ: map[string]*Table{}}
}

// AddTable registers t. Returns an error if a table with the same
// physical name was already added.
func (s *Schema) AddTable(t *Table) error {
	k := key(t.DBName)
	if _, exists := s.byDB[k]; exists {
		return fmt.Errorf("duplicate table: %s", t.DBName)
	}
	s.byDB[k] = t
	s.byGQ[key(t.GraphQLName)] = t
	s.order = append(s.order, t)
	return nil
}

// TableByDBName looks up a table by its physical name, case-insensitively.
func (s *Schema) TableByDBName(name string) (*Table, bool) {
	t, ok := s.byDB[key(name)]
	return t, ok
}

// TableByGraphQLName looks up a table by its GraphQL-facing name,
// case-insensitively.
func (s *Schema) TableByGraphQLName(name string) (*Table, bool) {
	t, ok := s.byGQ[key(name)]
	return t, ok
}

// Tables returns every table in declaration order.
func (s *Schema) Tables() []*Table {
	out := make([]*Table, len(s.order))
	copy(out, s.order)
	return out
}

// ForeignKey is one edge of an auto-detected relation graph, as produced
// by a live-database introspector (out of this compiler's scope; see
// spec.md §1 "external collaborators").
type ForeignKey struct {
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// BuildFromForeignKeys constructs a Schema from a flat table list and a
// foreign-key catalog: a Single link is created on the child table and a
// Multi link on the parent for every FK, and a many-to-many link is
// inferred whenever a table carries exactly two FKs pointing at two
// distinct tables (the table itself is treated as the junction).
func BuildFromForeignKeys(tables []*Table, fks []ForeignKey) (*Schema, error) {
	s := NewSchema()
	for _, t := range tables {
		if err := s.AddTable(t); err != nil {
			return nil, err
		}
	}

	fksByChild := map[string][]ForeignKey{}
	for _, fk := range fks {
		child, ok := s.TableByDBName(fk.ChildTable)
		if !ok {
			return nil, fmt.Errorf("foreign key references unknown child table: %s", fk.ChildTable)
		}
		parent, ok := s.TableByDBName(fk.ParentTable)
		if !ok {
			return nil, fmt.Errorf("foreign key references unknown parent table: %s", fk.ParentTable)
		}

		singleName := flect.Singularize(parent.GraphQLName)
		child.AddSingleLink(SingleLink{
			Name:        singleName,
			ChildTable:  child.DBName,
			ChildCol:    fk.ChildColumn,
			ParentTable: parent.DBName,
			ParentCol:   fk.ParentColumn,
		})

		multiName := flect.Pluralize(child.GraphQLName)
		parent.AddMultiLink(MultiLink{
			Name:        multiName,
			ParentTable: parent.DBName,
			ParentCol:   fk.ParentColumn,
			ChildTable:  child.DBName,
			ChildCol:    fk.ChildColumn,
		})

		fksByChild[key(fk.ChildTable)] = append(fksByChild[key(fk.ChildTable)], fk)
	}

	for _, t := range tables {
		edges := fksByChild[key(t.DBName)]
		if len(edges) != 2 {
			continue
		}
		a, b := edges[0], edges[1]
		if key(a.ParentTable) == key(b.ParentTable) {
			continue // self-referencing pair, not a many-to-many junction
		}
		source, _ := s.TableByDBName(a.ParentTable)
		target, _ := s.TableByDBName(b.ParentTable)
		m2mName := flect.Pluralize(target.GraphQLName)
		source.AddManyToManyLink(ManyToManyLink{
			Name:           m2mName,
			Source:         source.DBName,
			SourceCol:      a.ParentColumn,
			Junction:       t.DBName,
			JunctionSrcCol: a.ChildColumn,
			JunctionTgtCol: b.ChildColumn,
			Target:         target.DBName,
			TargetCol:      b.ParentColumn,
		})

		reverseName := flect.Pluralize(source.GraphQLName)
		target.AddManyToManyLink(ManyToManyLink{
			Name:           reverseName,
			Source:         target.DBName,
			SourceCol:      b.ParentColumn,
			Junction:       t.DBName,
			JunctionSrcCol: b.ChildColumn,
			JunctionTgtCol: a.ChildColumn,
			Target:         source.DBName,
			TargetCol:      a.ParentColumn,
		})
	}

	return s, nil
}

package qcode

import (
	"strings"

	"github.com/standardbeagle/bifrostql/core/sdata"
)

// ConnectLinks resolves every pending link into a physical join, in
// declaration order, then recurses into each child. It is the only
// method that mutates an ObjectQuery after construction; once it
// returns, Joins is fixed and the tree is read-only during emission.
func (q *ObjectQuery) ConnectLinks(schema *sdata.Schema) error {
	for i := range q.Links {
		link := &q.Links[i]
		childKey := link.Alias
		if childKey == "" {
			childKey = link.Name
		}
		statementKey := q.Path + "->" + childKey

		edge, err := q.resolveLink(schema, link, statementKey)
		if err != nil {
			return err
		}

		edge.Child.Path = statementKey
		if err := edge.Child.ConnectLinks(schema); err != nil {
			return err
		}
		q.Joins = append(q.Joins, *edge)
	}
	return nil
}

// resolveLink implements the four-step lookup from spec.md §4.6: multi
// link first (one-to-many), then single link (many-to-one), then a
// "_join_"-prefixed dynamic join, and finally failure.
func (q *ObjectQuery) resolveLink(schema *sdata.Schema, link *PendingLink, statementKey string) (*JoinEdge, error) {
	if ml, ok := q.Table.MultiLink(link.Name); ok {
		child := link.Child
		childTable, ok := schema.TableByDBName(ml.ChildTable)
		if !ok {
			return nil, schemaLookupErr("table", ml.ChildTable, q.TableName)
		}
		child.Table = childTable
		child.TableName = childTable.DBName
		child.SchemaName = childTable.Schema
		child.QueryType = Join
		return &JoinEdge{
			StatementKey:    statementKey,
			Type:            Join,
			FromColumn:      ml.ParentCol,
			ConnectedColumn: ml.ChildCol,
			Child:           child,
		}, nil
	}

	if sl, ok := q.Table.SingleLink(link.Name); ok {
		child := link.Child
		parentTable, ok := schema.TableByDBName(sl.ParentTable)
		if !ok {
			return nil, schemaLookupErr("table", sl.ParentTable, q.TableName)
		}
		child.Table = parentTable
		child.TableName = parentTable.DBName
		child.SchemaName = parentTable.Schema
		child.QueryType = Single
		return &JoinEdge{
			StatementKey:    statementKey,
			Type:            Single,
			FromColumn:      sl.ChildCol,
			ConnectedColumn: sl.ParentCol,
			Child:           child,
		}, nil
	}

	if strings.HasPrefix(link.Name, "_join_") && link.DynamicOn != nil {
		link.Child.QueryType = Join
		return &JoinEdge{
			StatementKey:    statementKey,
			Type:            Join,
			FromColumn:      link.DynamicOn.FromColumn,
			ConnectedColumn: link.DynamicOn.ConnectedColumn,
			Child:           link.Child,
			DynamicOn:       link.DynamicOn,
		}, nil
	}

	return nil, executionErr("Unable to find join `%s`", link.Name)
}

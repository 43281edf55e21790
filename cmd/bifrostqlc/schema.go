package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/standardbeagle/bifrostql/core/sdata"
)

type schemaColumnDoc struct {
	DBName      string `json:"dbName"`
	GraphQLName string `json:"graphqlName"`
	DataType    string `json:"dataType"`
	PrimaryKey  bool   `json:"primaryKey"`
	Nullable    bool   `json:"nullable"`
}

type schemaTableDoc struct {
	DBName      string            `json:"dbName"`
	GraphQLName string            `json:"graphqlName"`
	Schema      string            `json:"schema"`
	Columns     []schemaColumnDoc `json:"columns"`
}

type foreignKeyDoc struct {
	ChildTable   string `json:"childTable"`
	ChildColumn  string `json:"childColumn"`
	ParentTable  string `json:"parentTable"`
	ParentColumn string `json:"parentColumn"`
}

type schemaDoc struct {
	Tables      []schemaTableDoc `json:"tables"`
	ForeignKeys []foreignKeyDoc  `json:"foreignKeys"`
}

// loadSchema reads a JSON schema document from path and builds a
// sdata.Schema from it, standing in for the live-database introspector
// spec.md places out of the core's scope.
func loadSchema(path string) (*sdata.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	var doc schemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	tables := make([]*sdata.Table, len(doc.Tables))
	for i, td := range doc.Tables {
		t := sdata.NewTable(td.DBName, td.GraphQLName, td.Schema)
		for _, cd := range td.Columns {
			t.AddColumn(sdata.NewColumn(cd.DBName, cd.GraphQLName, cd.DataType, cd.PrimaryKey, cd.Nullable))
		}
		tables[i] = t
	}

	fks := make([]sdata.ForeignKey, len(doc.ForeignKeys))
	for i, fd := range doc.ForeignKeys {
		fks[i] = sdata.ForeignKey{
			ChildTable:   fd.ChildTable,
			ChildColumn:  fd.ChildColumn,
			ParentTable:  fd.ParentTable,
			ParentColumn: fd.ParentColumn,
		}
	}

	return sdata.BuildFromForeignKeys(tables, fks)
}

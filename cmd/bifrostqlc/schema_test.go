package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadSchemaBuildsLinksFromForeignKeys(t *testing.T) {
	doc := `{
		"tables": [
			{"dbName": "Users", "columns": [
				{"dbName": "Id", "primaryKey": true, "dataType": "int"},
				{"dbName": "Name", "dataType": "text"}
			]},
			{"dbName": "Orders", "columns": [
				{"dbName": "Id", "primaryKey": true, "dataType": "int"},
				{"dbName": "UserId", "dataType": "int"}
			]}
		],
		"foreignKeys": [
			{"childTable": "Orders", "childColumn": "UserId", "parentTable": "Users", "parentColumn": "Id"}
		]
	}`
	path := writeTempFile(t, "schema.json", doc)

	schema, err := loadSchema(path)
	if err != nil {
		t.Fatal(err)
	}
	users, ok := schema.TableByDBName("Users")
	if !ok {
		t.Fatal("expected Users table")
	}
	if _, ok := users.MultiLink("Orders"); !ok {
		t.Fatal("expected an auto-discovered multi link Users -> Orders")
	}
}

func TestLoadRequestParsesFieldsAndFragments(t *testing.T) {
	doc := `{
		"requestType": "query",
		"table": "Users",
		"operation": {
			"name": "Users",
			"fields": [
				{"name": "Id"},
				{"name": "orders", "fields": [{"name": "Total"}]}
			],
			"fragmentSpreads": ["Base"]
		},
		"fragments": {
			"Base": {"fields": [{"name": "Name"}]}
		}
	}`
	path := writeTempFile(t, "query.json", doc)

	field, fragments, table, reqType, err := loadRequest(path)
	if err != nil {
		t.Fatal(err)
	}
	if table != "Users" || reqType != 0 {
		t.Fatalf("unexpected table/reqType: %s %v", table, reqType)
	}
	if len(field.Fields) != 2 {
		t.Fatalf("expected 2 fields before expansion, got %d", len(field.Fields))
	}
	if _, ok := fragments["Base"]; !ok {
		t.Fatal("expected fragment Base to be loaded")
	}
}

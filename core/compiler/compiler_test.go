package compiler

import (
	"testing"

	"github.com/standardbeagle/bifrostql/core/adapter"
	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/sdata"
	"github.com/standardbeagle/bifrostql/internal/cache"
)

func buildSchema(t *testing.T) (*sdata.Schema, *sdata.Table) {
	t.Helper()
	users := sdata.NewTable("Users", "Users", "")
	users.AddColumn(sdata.NewColumn("Id", "Id", "int", true, false))
	users.AddColumn(sdata.NewColumn("Name", "Name", "text", false, false))
	s := sdata.NewSchema()
	if err := s.AddTable(users); err != nil {
		t.Fatal(err)
	}
	return s, users
}

func TestCompileWithoutCache(t *testing.T) {
	schema, users := buildSchema(t)
	c := New(schema)
	dia := dialect.For(dialect.Postgres)

	field := &adapter.QueryField{Name: "Users", Fields: []*adapter.QueryField{{Name: "Id"}}}
	sqls, err := c.Compile(dia, field, users, adapter.Query)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sqls["Users"]; !ok {
		t.Fatalf("missing main statement, got keys %v", keysOf(sqls))
	}
}

func TestCompileCachesFilterFreeShape(t *testing.T) {
	schema, users := buildSchema(t)
	planCache, err := cache.NewPlanCache(16)
	if err != nil {
		t.Fatal(err)
	}
	c := New(schema)
	c.Cache = planCache
	dia := dialect.For(dialect.Postgres)

	field := &adapter.QueryField{Name: "Users", Fields: []*adapter.QueryField{{Name: "Id"}}}
	if _, err := c.Compile(dia, field, users, adapter.Query); err != nil {
		t.Fatal(err)
	}
	if planCache.Len() != 1 {
		t.Fatalf("expected 1 cached plan, got %d", planCache.Len())
	}

	sqls2, err := c.Compile(dia, field, users, adapter.Query)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sqls2["Users"]; !ok {
		t.Fatalf("expected cache-hit compile to still return the main statement")
	}
}

func TestCompileNeverCachesFilteredRequests(t *testing.T) {
	schema, users := buildSchema(t)
	planCache, err := cache.NewPlanCache(16)
	if err != nil {
		t.Fatal(err)
	}
	c := New(schema)
	c.Cache = planCache
	dia := dialect.For(dialect.Postgres)

	field := &adapter.QueryField{
		Name:      "Users",
		Arguments: map[string]interface{}{"filter": map[string]interface{}{"Name": map[string]interface{}{"_eq": "Ada"}}},
		Fields:    []*adapter.QueryField{{Name: "Id"}},
	}
	if _, err := c.Compile(dia, field, users, adapter.Query); err != nil {
		t.Fatal(err)
	}
	if planCache.Len() != 0 {
		t.Fatalf("expected filtered request to bypass the cache, got %d entries", planCache.Len())
	}
}

func keysOf(m map[string]param.Sql) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

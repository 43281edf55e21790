package qcode

import (
	"strings"
	"testing"

	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/filter"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

func buildUsersOrdersSchema(t *testing.T) (*sdata.Schema, *sdata.Table, *sdata.Table) {
	t.Helper()
	users := sdata.NewTable("Users", "Users", "")
	users.AddColumn(sdata.NewColumn("Id", "Id", "int", true, false))
	users.AddColumn(sdata.NewColumn("Name", "Name", "text", false, false))

	orders := sdata.NewTable("Orders", "Orders", "")
	orders.AddColumn(sdata.NewColumn("Id", "Id", "int", true, false))
	orders.AddColumn(sdata.NewColumn("UserId", "UserId", "int", false, false))
	orders.AddColumn(sdata.NewColumn("Total", "Total", "money", false, false))

	s, err := sdata.BuildFromForeignKeys([]*sdata.Table{users, orders}, []sdata.ForeignKey{
		{ChildTable: "Orders", ChildColumn: "UserId", ParentTable: "Users", ParentColumn: "Id"},
	})
	if err != nil {
		t.Fatal(err)
	}
	u, _ := s.TableByDBName("Users")
	o, _ := s.TableByDBName("Orders")
	return s, u, o
}

// Scenario 6 from spec.md §8: multi-link join, SQL Server.
func TestScenario6MultiLinkJoinSqlServer(t *testing.T) {
	schema, users, orders := buildUsersOrdersSchema(t)

	root := New(users, "Users", "")
	_ = root.AddScalarColumn("Id")

	child := New(orders, "orders", "")
	_ = child.AddScalarColumn("Id")
	_ = child.AddScalarColumn("Total")

	root.Links = append(root.Links, PendingLink{Name: "orders", Child: child})

	if err := root.ConnectLinks(schema); err != nil {
		t.Fatal(err)
	}
	if len(root.Joins) != 1 {
		t.Fatalf("expected 1 join, got %d", len(root.Joins))
	}
	edge := root.Joins[0]
	if edge.StatementKey != "Users->orders" {
		t.Fatalf("StatementKey = %q, want Users->orders", edge.StatementKey)
	}
	if edge.Type != Join {
		t.Fatalf("expected Join type for multi link")
	}

	dia := dialect.For(dialect.SqlServer)
	params := param.NewCollection(dia.ParameterPrefix())
	sqls := map[string]param.Sql{}
	if err := root.AddSQLParameterized(schema, dia, sqls, params); err != nil {
		t.Fatal(err)
	}

	sql, ok := sqls["Users->orders"]
	if !ok {
		t.Fatalf("missing statement for key Users->orders; got keys %v", keysOf(sqls))
	}
	if !strings.Contains(sql.Text, "INNER JOIN") {
		t.Errorf("expected INNER JOIN in %q", sql.Text)
	}
	if !strings.Contains(sql.Text, "[Orders]") {
		t.Errorf("expected [Orders] in %q", sql.Text)
	}
	if !strings.Contains(sql.Text, "[Id] AS JoinId") {
		t.Errorf("expected distinct pin set keyed on [Id] AS JoinId in %q", sql.Text)
	}
	if !strings.Contains(sql.Text, "b.[Id]") || !strings.Contains(sql.Text, "b.[Total]") {
		t.Errorf("expected child projections b.[Id], b.[Total] in %q", sql.Text)
	}
	if !strings.Contains(sql.Text, "a.JoinId AS src_id") {
		t.Errorf("expected a.JoinId AS src_id in %q", sql.Text)
	}
}

func TestConnectLinksUnknownJoinFails(t *testing.T) {
	schema, users, _ := buildUsersOrdersSchema(t)
	root := New(users, "Users", "")
	_ = root.AddScalarColumn("Id")
	root.Links = append(root.Links, PendingLink{Name: "doesNotExist", Child: New(users, "x", "")})

	err := root.ConnectLinks(schema)
	if err == nil {
		t.Fatal("expected error for unknown join")
	}
}

func TestSingleJoinSuppressesChildFilterSortAndPagination(t *testing.T) {
	schema, users, orders := buildUsersOrdersSchema(t)

	root := New(orders, "Orders", "")
	_ = root.AddScalarColumn("Id")

	child := New(users, "user", "")
	_ = child.AddScalarColumn("Id")
	_ = child.AddScalarColumn("Name")
	limit := 5
	child.Limit = &limit
	child.Sort = []SortTerm{{Column: "Name", Dir: dialect.Desc}}
	child.Filter = &filter.Filter{Kind: filter.KindColumn, Table: "Users", Column: "Name", Op: filter.OpEq, Value: "Ada"}

	root.Links = append(root.Links, PendingLink{Name: "User", Child: child})
	if err := root.ConnectLinks(schema); err != nil {
		t.Fatal(err)
	}
	if root.Joins[0].Type != Single {
		t.Fatalf("expected Single join type")
	}

	dia := dialect.For(dialect.Postgres)
	params := param.NewCollection(dia.ParameterPrefix())
	sqls := map[string]param.Sql{}
	if err := root.AddSQLParameterized(schema, dia, sqls, params); err != nil {
		t.Fatal(err)
	}
	joinSQL, ok := sqls["Orders->User"]
	if !ok {
		t.Fatalf("missing statement for key Orders->User; got keys %v", keysOf(sqls))
	}
	if strings.Contains(joinSQL.Text, "LIMIT 5") {
		t.Errorf("Single join must not carry child pagination: %q", joinSQL.Text)
	}
	if strings.Contains(joinSQL.Text, "WHERE") {
		t.Errorf("Single join must not carry child filter: %q", joinSQL.Text)
	}
	if strings.Contains(joinSQL.Text, "ORDER BY") {
		t.Errorf("Single join must not carry child sort: %q", joinSQL.Text)
	}
}

func keysOf(m map[string]param.Sql) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

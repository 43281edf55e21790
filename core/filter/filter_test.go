package filter

import (
	"testing"

	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

func usersSchema() *sdata.Schema {
	users := sdata.NewTable("Users", "Users", "")
	users.AddColumn(sdata.NewColumn("Id", "Id", "int", true, false))
	users.AddColumn(sdata.NewColumn("Name", "Name", "text", false, true))
	users.AddColumn(sdata.NewColumn("Email", "Email", "text", false, true))
	s := sdata.NewSchema()
	_ = s.AddTable(users)
	return s
}

func TestFromObjectSimpleEq(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	f, err := FromObject(map[string]interface{}{
		"Id": map[string]interface{}{"_eq": 42},
	}, users, s)
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindColumn || f.Op != OpEq || f.Value != 42 {
		t.Fatalf("unexpected filter: %+v", f)
	}
}

func TestFromObjectTwoOperatorsInvalid(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	_, err := FromObject(map[string]interface{}{
		"Id": map[string]interface{}{"_eq": 1, "_gt": 2},
	}, users, s)
	if err == nil {
		t.Fatal("expected error for multi-operator leaf")
	}
}

// Scenario 1 from spec.md §8: Simple filter + eq, SQL Server.
func TestScenario1SimpleEqSqlServer(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	f, err := FromObject(map[string]interface{}{
		"Id": map[string]interface{}{"_eq": 42},
	}, users, s)
	if err != nil {
		t.Fatal(err)
	}

	d := dialect.For(dialect.SqlServer)
	params := param.NewCollection(d.ParameterPrefix())
	where, err := GetFilterSQLParameterized(f, s, d, params, "Users")
	if err != nil {
		t.Fatal(err)
	}
	wantWhere := " WHERE [Users].[Id] = @p0"
	if where.Text != wantWhere {
		t.Fatalf("got %q, want %q", where.Text, wantWhere)
	}
	if len(where.Params) != 1 || where.Params[0].Value != 42 || where.Params[0].Name != "@p0" {
		t.Fatalf("unexpected params: %+v", where.Params)
	}
}

// Scenario 2 from spec.md §8: AND filter, MySQL.
func TestScenario2AndFilterMySQL(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	f, err := FromObject(map[string]interface{}{
		"and": []interface{}{
			map[string]interface{}{"Name": map[string]interface{}{"_eq": "John"}},
			map[string]interface{}{"Email": map[string]interface{}{"_contains": "@test.com"}},
		},
	}, users, s)
	if err != nil {
		t.Fatal(err)
	}

	d := dialect.For(dialect.MySql)
	params := param.NewCollection(d.ParameterPrefix())
	_, where, err := f.ToSQL(s, d, params, "Users")
	if err != nil {
		t.Fatal(err)
	}
	want := "((`Users`.`Name` = @p0) AND (`Users`.`Email` LIKE CONCAT('%', @p1, '%')))"
	if where.Text != want {
		t.Fatalf("got %q, want %q", where.Text, want)
	}
}

// Scenario 3 from spec.md §8: IN filter, PostgreSQL.
func TestScenario3InFilterPostgres(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	f, err := FromObject(map[string]interface{}{
		"Id": map[string]interface{}{"_in": []interface{}{1, 2, 3, 4, 5}},
	}, users, s)
	if err != nil {
		t.Fatal(err)
	}

	d := dialect.For(dialect.Postgres)
	params := param.NewCollection(d.ParameterPrefix())
	_, where, err := f.ToSQL(s, d, params, "U")
	if err != nil {
		t.Fatal(err)
	}
	want := `"U"."Id" IN (@p0, @p1, @p2, @p3, @p4)`
	if where.Text != want {
		t.Fatalf("got %q, want %q", where.Text, want)
	}
	if len(where.Params) != 5 {
		t.Fatalf("expected 5 params, got %d", len(where.Params))
	}
}

func TestFromPrimaryKeyLengthMismatch(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	_, err := FromPrimaryKey([]interface{}{1, 2}, users.PrimaryKeyColumns(), users)
	if err == nil {
		t.Fatal("expected error on length mismatch")
	}
}

func TestFromPrimaryKeySingleColumn(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	f, err := FromPrimaryKey([]interface{}{7}, users.PrimaryKeyColumns(), users)
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindColumn || f.Op != OpEq || f.Value != 7 {
		t.Fatalf("unexpected filter: %+v", f)
	}
}

func TestPrimaryKeyMergeWithExistingFilter(t *testing.T) {
	s := usersSchema()
	users, _ := s.TableByDBName("Users")
	existing, _ := FromObject(map[string]interface{}{
		"Name": map[string]interface{}{"_eq": "a"},
	}, users, s)
	pk, _ := FromPrimaryKey([]interface{}{1}, users.PrimaryKeyColumns(), users)

	merged := And(existing, pk)
	if merged.Kind != KindAnd || len(merged.Children) != 2 {
		t.Fatalf("unexpected merge: %+v", merged)
	}
	if merged.Children[0] != existing || merged.Children[1] != pk {
		t.Fatal("expected original filter first, primary key filter second")
	}
}

package pivot

import (
	"strings"
	"testing"

	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/qcode"
	"github.com/standardbeagle/bifrostql/core/sdata"
)

func buildSalesTable() (*sdata.Schema, *sdata.Table) {
	sales := sdata.NewTable("Sales", "Sales", "")
	sales.AddColumn(sdata.NewColumn("Id", "Id", "int", true, false))
	sales.AddColumn(sdata.NewColumn("Region", "Region", "text", false, false))
	sales.AddColumn(sdata.NewColumn("Quarter", "Quarter", "text", false, true))
	sales.AddColumn(sdata.NewColumn("Amount", "Amount", "money", false, false))
	schema := sdata.NewSchema()
	_ = schema.AddTable(sales)
	return schema, sales
}

// Scenario 5 from spec.md §8: PIVOT plan, SQL Server.
func TestScenario5NativePivotSqlServer(t *testing.T) {
	schema, sales := buildSalesTable()
	planner := NewPlanner(schema)
	dia := dialect.For(dialect.SqlServer)
	params := param.NewCollection(dia.ParameterPrefix())

	req := Request{
		Table:          sales,
		PivotColumn:    "Quarter",
		ValueColumn:    "Amount",
		GroupByColumns: []string{"Region"},
		Aggregate:      qcode.AggSum,
	}
	values := []interface{}{"Q1", "Q2", "Q3", "Q4"}

	sql, err := planner.Plan(dia, req, values, params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql.Text, "SELECT [Region], [Q1], [Q2], [Q3], [Q4]") {
		t.Errorf("unexpected outer projection: %q", sql.Text)
	}
	if !strings.Contains(sql.Text, "PIVOT (SUM([Amount]) FOR __pivot_col IN ([Q1], [Q2], [Q3], [Q4]))") {
		t.Errorf("missing PIVOT clause: %q", sql.Text)
	}
}

func TestCaseWhenFallbackOnPostgres(t *testing.T) {
	schema, sales := buildSalesTable()
	planner := NewPlanner(schema)
	dia := dialect.For(dialect.Postgres)
	params := param.NewCollection(dia.ParameterPrefix())

	req := Request{
		Table:          sales,
		PivotColumn:    "Quarter",
		ValueColumn:    "Amount",
		GroupByColumns: []string{"Region"},
		Aggregate:      qcode.AggSum,
	}
	values := []interface{}{"Q1", nil}

	sql, err := planner.Plan(dia, req, values, params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql.Text, `"Quarter" = @p0`) {
		t.Errorf("expected parameterized eq branch: %q", sql.Text)
	}
	if !strings.Contains(sql.Text, `"Quarter" IS NULL`) {
		t.Errorf("expected IS NULL branch for nil value: %q", sql.Text)
	}
	if !strings.Contains(sql.Text, `AS "_null_"`) {
		t.Errorf("expected default null label as output alias: %q", sql.Text)
	}
	if len(params.Params()) != 1 {
		t.Errorf("expected exactly 1 bound parameter (the non-null branch), got %d", len(params.Params()))
	}
}

func TestPivotColumnCannotAlsoGroupBy(t *testing.T) {
	schema, sales := buildSalesTable()
	planner := NewPlanner(schema)
	dia := dialect.For(dialect.Postgres)
	params := param.NewCollection(dia.ParameterPrefix())

	req := Request{
		Table:          sales,
		PivotColumn:    "Quarter",
		ValueColumn:    "Amount",
		GroupByColumns: []string{"Quarter"},
		Aggregate:      qcode.AggSum,
	}
	if _, err := planner.Plan(dia, req, []interface{}{"Q1"}, params); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestUnknownAggregateRejected(t *testing.T) {
	schema, sales := buildSalesTable()
	planner := NewPlanner(schema)
	dia := dialect.For(dialect.Postgres)
	params := param.NewCollection(dia.ParameterPrefix())

	req := Request{
		Table:          sales,
		PivotColumn:    "Quarter",
		ValueColumn:    "Amount",
		GroupByColumns: []string{"Region"},
		Aggregate:      "MEDIAN",
	}
	if _, err := planner.Plan(dia, req, []interface{}{"Q1"}, params); err == nil {
		t.Fatal("expected unsupported-aggregate error")
	}
}

func TestEmptyValuesDegradesToPlainGroupBy(t *testing.T) {
	schema, sales := buildSalesTable()
	planner := NewPlanner(schema)
	dia := dialect.For(dialect.Postgres)
	params := param.NewCollection(dia.ParameterPrefix())

	req := Request{
		Table:          sales,
		PivotColumn:    "Quarter",
		ValueColumn:    "Amount",
		GroupByColumns: []string{"Region"},
		Aggregate:      qcode.AggSum,
	}
	sql, err := planner.Plan(dia, req, nil, params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql.Text, `SELECT "Region" FROM "Sales" GROUP BY "Region"`) {
		t.Errorf("unexpected degraded plan: %q", sql.Text)
	}
}

func TestDistinctValuesSQLOrdersAndPreservesNulls(t *testing.T) {
	schema, sales := buildSalesTable()
	planner := NewPlanner(schema)
	dia := dialect.For(dialect.SqlServer)
	params := param.NewCollection(dia.ParameterPrefix())

	req := Request{Table: sales, PivotColumn: "Quarter"}
	sql, err := planner.DistinctValuesSQL(dia, req, params)
	if err != nil {
		t.Fatal(err)
	}
	if sql.Text != "SELECT DISTINCT [Quarter] FROM [Sales] ORDER BY [Quarter]" {
		t.Errorf("unexpected distinct-values SQL: %q", sql.Text)
	}
}

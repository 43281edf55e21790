// Package compiler wires C1-C9 into a single entry point: given a parsed
// request and a target dialect, it produces the named map of
// parameterized SQL statements spec.md describes as the compiler's only
// output.
package compiler

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/standardbeagle/bifrostql/core/adapter"
	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/core/sdata"
	"github.com/standardbeagle/bifrostql/internal/cache"
)

// Compiler is the top-level facade. Logger and Cache are both optional: a
// nil Logger silences all instrumentation, and a nil Cache always
// compiles fresh.
type Compiler struct {
	Schema *sdata.Schema
	Logger *zap.Logger
	Cache  *cache.PlanCache
}

// New builds a Compiler bound to schema. Logger and Cache default to nil
// and are set directly on the returned value by callers that want them.
func New(schema *sdata.Schema) *Compiler {
	return &Compiler{Schema: schema}
}

// Compile lowers field (already fragment-expanded by the caller) against
// table into the family of named SQL statements for dia, trying the plan
// cache first when one is configured.
func (c *Compiler) Compile(dia dialect.Dialect, field *adapter.QueryField, table *sdata.Table, reqType adapter.RequestType) (map[string]param.Sql, error) {
	traceID := uuid.New().String()
	log := c.Logger
	if log != nil {
		log = log.With(zap.String("trace_id", traceID), zap.String("dialect", string(dia.Name())), zap.String("table", table.DBName))
	}

	c.warnUnknownOperators(log, field)

	var key cache.Key
	var cacheable bool
	if c.Cache != nil {
		intent := adapter.FromQueryField(field, reqType)
		key, cacheable = cache.KeyFor(intent)
		if cacheable {
			if sqls, ok := c.Cache.Get(key); ok {
				if log != nil {
					log.Debug("plan cache hit")
				}
				return sqls, nil
			}
		}
	}
	if log != nil {
		log.Debug("plan cache miss", zap.Bool("cacheable", cacheable))
	}

	ra := adapter.NewRequestAdapter(c.Schema)
	q, err := ra.FromQueryField(field, table)
	if err != nil {
		if log != nil {
			log.Error("adapter lowering failed", zap.Error(err))
		}
		return nil, err
	}

	sqls := map[string]param.Sql{}
	params := param.NewCollection(dia.ParameterPrefix())
	if err := q.AddSQLParameterized(c.Schema, dia, sqls, params); err != nil {
		if log != nil {
			log.Error("statement emission failed", zap.Error(err))
		}
		return nil, err
	}

	if c.Cache != nil && cacheable {
		c.Cache.Add(key, sqls)
	}
	return sqls, nil
}

// knownOperators mirrors the operator set core/filter renders: every token
// in core/dialect's operator table plus _is_null/_is_not_null, which
// core/filter renders itself. Kept here (rather than exported from
// core/dialect) so the dialect package stays free of any observability
// dependency.
var knownOperators = map[string]bool{
	"_eq": true, "_neq": true, "_lt": true, "_lte": true, "_gt": true, "_gte": true,
	"_like": true, "_contains": true, "_starts_with": true, "_ends_with": true,
	"_nlike": true, "_ncontains": true, "_nstarts_with": true, "_nends_with": true,
	"_in": true, "_nin": true, "_between": true, "_nbetween": true,
	"_is_null": true, "_is_not_null": true,
}

// warnUnknownOperators walks every filter argument reachable from field
// and logs a Warn for each operator token dialect.Operator would silently
// fall back to "=" for, since silent operator coercion is a correctness
// risk worth surfacing rather than swallowing.
func (c *Compiler) warnUnknownOperators(log *zap.Logger, field *adapter.QueryField) {
	if log == nil {
		return
	}
	var walk func(f *adapter.QueryField, path string)
	walk = func(f *adapter.QueryField, path string) {
		here := path + "." + f.Name
		if raw, ok := f.Arguments["filter"]; ok {
			for _, op := range collectOperators(raw) {
				if !knownOperators[strings.ToLower(strings.TrimSpace(op))] {
					log.Warn("unknown filter operator falls back to \"=\"", zap.String("path", here), zap.String("operator", op))
				}
			}
		}
		for _, sub := range f.Fields {
			walk(sub, here)
		}
	}
	walk(field, "")
}

func collectOperators(raw interface{}) []string {
	var out []string
	switch v := raw.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lk := strings.ToLower(k)
			if lk == "and" || lk == "or" {
				out = append(out, collectOperators(v[k])...)
				continue
			}
			if strings.HasPrefix(k, "_") {
				out = append(out, k)
				continue
			}
			out = append(out, collectOperators(v[k])...)
		}
	case []interface{}:
		for _, item := range v {
			out = append(out, collectOperators(item)...)
		}
	}
	return out
}

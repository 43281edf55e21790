package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/bifrostql/core/adapter"
	"github.com/standardbeagle/bifrostql/core/compiler"
	"github.com/standardbeagle/bifrostql/core/dialect"
	"github.com/standardbeagle/bifrostql/core/param"
	"github.com/standardbeagle/bifrostql/internal/cache"
)

func compileCmd() *cobra.Command {
	var schemaPath, queryPath, dialectName string
	var cacheSize int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a QueryField document into its named SQL statement map",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := readConfig(cpath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("schema") {
				cfg.SchemaPath = schemaPath
			}
			if cmd.Flags().Changed("query") {
				cfg.QueryPath = queryPath
			}
			if cmd.Flags().Changed("dialect") {
				cfg.Dialect = dialectName
			}
			if cmd.Flags().Changed("cache-size") {
				cfg.CacheSize = cacheSize
			}

			return runCompile(cfg, verbose)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the JSON schema document")
	cmd.Flags().StringVar(&queryPath, "query", "", "path to the JSON query document")
	cmd.Flags().StringVar(&dialectName, "dialect", "", "target dialect: sqlserver|postgres|mysql|sqlite")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 0, "plan cache capacity (0 disables the cache)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	return cmd
}

func runCompile(cfg *Config, verbose bool) error {
	log := newLogger(verbose)
	defer log.Sync() //nolint:errcheck

	if cfg.SchemaPath == "" || cfg.QueryPath == "" {
		return fmt.Errorf("both --schema and --query are required")
	}

	dia := dialect.For(dialect.Name(cfg.Dialect))
	if dia == nil {
		return fmt.Errorf("unknown dialect: %s", cfg.Dialect)
	}

	schema, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}

	field, fragments, tableName, reqType, err := loadRequest(cfg.QueryPath)
	if err != nil {
		return err
	}
	if err := adapter.ExpandFragments(field, fragments); err != nil {
		return err
	}

	table, ok := schema.TableByGraphQLName(tableName)
	if !ok {
		table, ok = schema.TableByDBName(tableName)
	}
	if !ok {
		return fmt.Errorf("unknown table: %s", tableName)
	}

	c := compiler.New(schema)
	c.Logger = log
	if cfg.CacheSize > 0 {
		planCache, err := cache.NewPlanCache(cfg.CacheSize)
		if err != nil {
			return fmt.Errorf("creating plan cache: %w", err)
		}
		c.Cache = planCache
	}

	sqls, err := c.Compile(dia, field, table, reqType)
	if err != nil {
		return err
	}

	return printStatements(sqls)
}

type statementDoc struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

func printStatements(sqls map[string]param.Sql) error {
	out := make(map[string]statementDoc, len(sqls))
	for path, sql := range sqls {
		values := make([]interface{}, len(sql.Params))
		for i, p := range sql.Params {
			values[i] = p.Value
		}
		out[path] = statementDoc{SQL: sql.Text, Params: values}
	}
	enc := json.NewEncoder(cmdOut)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

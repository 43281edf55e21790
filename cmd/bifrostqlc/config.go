package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the thin orchestrator's settings: which dialect to target,
// where to find the schema and query documents, and how large the plan
// cache should be. The core compiler itself never reads configuration;
// this struct exists entirely to demonstrate wiring it in, per the
// teacher's serv.Config pattern.
type Config struct {
	Dialect    string `mapstructure:"dialect"`
	SchemaPath string `mapstructure:"schema_path"`
	QueryPath  string `mapstructure:"query_path"`
	CacheSize  int    `mapstructure:"cache_size"`
}

// readConfig loads configuration from cpath (a config file path without
// its extension, e.g. "./bifrostqlc" for "./bifrostqlc.yml", in any format
// viper supports), falling back to defaults when no such file exists.
// Flag overrides are applied afterwards by the calling command.
func readConfig(cpath string) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetDefault("dialect", "postgres")
	v.SetDefault("cache_size", 128)

	if cpath != "" {
		dir := filepath.Dir(cpath)
		base := strings.TrimSuffix(filepath.Base(cpath), filepath.Ext(cpath))
		v.AddConfigPath(dir)
		v.SetConfigName(base)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, v, nil
}

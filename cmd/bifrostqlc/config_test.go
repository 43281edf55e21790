package main

import "testing"

func TestReadConfigDefaultsWithNoFile(t *testing.T) {
	cfg, _, err := readConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dialect != "postgres" {
		t.Errorf("expected default dialect postgres, got %s", cfg.Dialect)
	}
	if cfg.CacheSize != 128 {
		t.Errorf("expected default cache size 128, got %d", cfg.CacheSize)
	}
}

func TestReadConfigLoadsFromFile(t *testing.T) {
	path := writeTempFile(t, "bifrostqlc.yml", "dialect: sqlserver\ncache_size: 64\n")
	cfgPath := path[:len(path)-len(".yml")]

	cfg, _, err := readConfig(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dialect != "sqlserver" {
		t.Errorf("expected dialect sqlserver from file, got %s", cfg.Dialect)
	}
	if cfg.CacheSize != 64 {
		t.Errorf("expected cache size 64 from file, got %d", cfg.CacheSize)
	}
}

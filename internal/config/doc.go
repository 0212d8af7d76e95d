// Package config provides loading and environment overlay for the party
// search server configuration. Default() is the baseline; Load reads a JSON
// or YAML file on top of it; FromEnv overlays PARTYSEARCH_* variables, which
// LoadDotEnv can populate from .env files.
//
// Example:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load("/etc/partysearch.yaml")
//	if err != nil { /* handle */ }
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	defer rt.Close()
package config

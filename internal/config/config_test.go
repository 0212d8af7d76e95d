package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("http addr: %s", cfg.Server.HTTPAddr)
	}
	if cfg.Cache.LoadTimeout() != 5*time.Second {
		t.Fatalf("cache timeout: %s", cfg.Cache.LoadTimeout())
	}
	if cfg.Storage.Fsync != "always" {
		t.Fatalf("fsync: %s", cfg.Storage.Fsync)
	}
}

func TestLoadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "partysearch.json")
	data := []byte(`{"server":{"httpAddr":":9000"},"feed":{"subscriberBuffer":64}}`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9000" || cfg.Feed.SubscriberBuffer != 64 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Server.GRPCAddr != ":9090" {
		t.Fatalf("defaults lost: %s", cfg.Server.GRPCAddr)
	}
}

func TestLoadYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "partysearch.yaml")
	data := []byte("storage:\n  fsync: interval\n  fsyncIntervalMs: 2\nrateLimit:\n  rps: 1.5\n  burst: 3\nlog:\n  level: debug\n")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Fsync != "interval" || cfg.Storage.FsyncInterval() != 2*time.Millisecond {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
	if cfg.RateLimit.RPS != 1.5 || cfg.RateLimit.Burst != 3 {
		t.Fatalf("rate limit: %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level: %s", cfg.Log.Level)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(file, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("PARTYSEARCH_HTTP_ADDR", ":1234")
	t.Setenv("PARTYSEARCH_FEED_PING_MS", "1000")
	t.Setenv("PARTYSEARCH_ALLOWED_ORIGINS", "example.com, *.gw.dev ,")
	t.Setenv("PARTYSEARCH_RATE_LIMIT_RPS", "0")
	t.Setenv("PARTYSEARCH_NODE_ID", "42")
	FromEnv(&cfg)
	if cfg.Server.HTTPAddr != ":1234" {
		t.Fatalf("http addr: %s", cfg.Server.HTTPAddr)
	}
	if cfg.Feed.PingInterval() != time.Second {
		t.Fatalf("ping: %s", cfg.Feed.PingInterval())
	}
	if len(cfg.Feed.OriginPatterns) != 2 || cfg.Feed.OriginPatterns[1] != "*.gw.dev" {
		t.Fatalf("origins: %v", cfg.Feed.OriginPatterns)
	}
	if cfg.RateLimit.RPS != 0 {
		t.Fatalf("rps: %v", cfg.RateLimit.RPS)
	}
	if cfg.Server.NodeID != 42 {
		t.Fatalf("node id: %d", cfg.Server.NodeID)
	}
}

func TestLoadDotEnvKeepsExistingEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte("PARTYSEARCH_TEST_A=from-file\nPARTYSEARCH_TEST_B=from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PARTYSEARCH_TEST_A", "from-env")
	t.Setenv("PARTYSEARCH_TEST_B", "")
	os.Unsetenv("PARTYSEARCH_TEST_B")

	if err := LoadDotEnv(file, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("PARTYSEARCH_TEST_A"); got != "from-env" {
		t.Fatalf("existing env overwritten: %s", got)
	}
	if got := os.Getenv("PARTYSEARCH_TEST_B"); got != "from-file" {
		t.Fatalf("file value not loaded: %s", got)
	}
}

func TestTrustedProxies(t *testing.T) {
	rl := RateLimitConfig{TrustedProxies: []string{"10.0.0.0/8", " 192.168.1.4 "}}
	got, err := rl.TrustedPrefixes()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0].String() != "10.0.0.0/8" || got[1].String() != "192.168.1.4/32" {
		t.Fatalf("prefixes: %v", got)
	}

	file := filepath.Join(t.TempDir(), "partysearch.yaml")
	if err := os.WriteFile(file, []byte("rateLimit:\n  trustedProxies: [\"proxy.local\"]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected error for unparsable proxy")
	}
}

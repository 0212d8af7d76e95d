package serverrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "partysearch.yaml")
	if err := os.WriteFile(cfgPath, []byte("server:\n  httpAddr: \":7000\"\n  grpcAddr: \":7001\"\nstorage:\n  fsync: never\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PARTYSEARCH_GRPC_ADDR", ":7101")

	cfg, err := resolveConfig(Options{ConfigPath: cfgPath, DataDir: dir, Fsync: "interval"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Server.HTTPAddr != ":7000" {
		t.Errorf("file value lost: %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.GRPCAddr != ":7101" {
		t.Errorf("env should override file: %q", cfg.Server.GRPCAddr)
	}
	if cfg.Storage.Fsync != "interval" {
		t.Errorf("flag should override file: %q", cfg.Storage.Fsync)
	}
	if cfg.Storage.DataDir != dir {
		t.Errorf("data dir: %q", cfg.Storage.DataDir)
	}
}

func TestResolveConfigRejectsBadFsync(t *testing.T) {
	if _, err := resolveConfig(Options{Fsync: "sometimes"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{DataDir: t.TempDir(), HTTPAddr: "127.0.0.1:0", GRPCAddr: "127.0.0.1:0", LogLevel: "error"})
	}()
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}
}

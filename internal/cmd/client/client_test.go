package client

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cfgpkg "github.com/rzbill/partysearch/internal/config"
	"github.com/rzbill/partysearch/internal/runtime"
	httpserver "github.com/rzbill/partysearch/internal/server/http"
	pebblestore "github.com/rzbill/partysearch/internal/storage/pebble"
)

const forge = `{"campaign":1,"continent":1,"region":4,"map":20,"district":1,
"entries":[{"sender":"Mhenlo","partySize":4,"partyMaxSize":8,"heroCount":0,"searchType":1,"level":20,"message":"LF healer"}]}`

func startHTTP(t *testing.T) string {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Feed.PingIntervalMs = 0
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	ts := httptest.NewServer(httpserver.New(rt, nil).Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = rt.Close()
	})
	return ts.URL
}

func TestSubmitThenWatchOnce(t *testing.T) {
	base := startHTTP(t)
	baseURL := func() string { return base }

	submit := NewSubmitCommand(baseURL)
	buf := &bytes.Buffer{}
	submit.SetOut(buf)
	submit.SetErr(buf)
	submit.SetArgs([]string{"--data", forge})
	if err := submit.Execute(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(buf.String(), `"changed": true`) {
		t.Fatalf("unexpected submit output: %s", buf.String())
	}

	watch := NewWatchCommand(baseURL)
	out := &bytes.Buffer{}
	watch.SetOut(out)
	watch.SetErr(&bytes.Buffer{})
	watch.SetArgs([]string{"--once", "--ping", "0", "--map", "Droknar's Forge"})
	if err := watch.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("watch: %v", err)
	}
	for _, want := range []string{"Droknar's Forge (20)", "district 1", "Mission", "Mhenlo"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("watch output missing %q:\n%s", want, out.String())
		}
	}
}

func TestWatchRejectsBadFilter(t *testing.T) {
	watch := NewWatchCommand(func() string { return "http://127.0.0.1:1" })
	watch.SetOut(&bytes.Buffer{})
	watch.SetErr(&bytes.Buffer{})
	watch.SetArgs([]string{"--filter", "level >"})
	if err := watch.Execute(); err == nil || !strings.Contains(err.Error(), "invalid --filter") {
		t.Fatalf("expected filter error, got %v", err)
	}
}

func TestSubmitReportsRejection(t *testing.T) {
	base := startHTTP(t)
	submit := NewSubmitCommand(func() string { return base })
	submit.SetOut(&bytes.Buffer{})
	submit.SetErr(&bytes.Buffer{})
	submit.SetArgs([]string{"--data", `{"district":1,"entries":[]}`})
	err := submit.Execute()
	if err == nil || !strings.Contains(err.Error(), "InvalidCampaign") {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestHealthCommand(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()
	t.Setenv("PARTYSEARCH_GRPC", lis.Addr().String())

	cmd := NewHealthCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(buf.String(), "SERVING") {
		t.Fatalf("output: %s", buf.String())
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for NOT_SERVING")
	}
}

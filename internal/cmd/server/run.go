package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cfgpkg "github.com/rzbill/partysearch/internal/config"
	"github.com/rzbill/partysearch/internal/runtime"
	grpcserver "github.com/rzbill/partysearch/internal/server/grpc"
	httpserver "github.com/rzbill/partysearch/internal/server/http"
	pebblestore "github.com/rzbill/partysearch/internal/storage/pebble"
	logpkg "github.com/rzbill/partysearch/pkg/log"
)

// Options are the command-line inputs. Empty fields leave the resolved
// config untouched.
type Options struct {
	// ConfigPath is a JSON or YAML file layered over the defaults.
	ConfigPath string
	// EnvFiles are .env files loaded before the environment is read.
	EnvFiles []string

	DataDir   string
	GRPCAddr  string
	HTTPAddr  string
	Fsync     string
	LogLevel  string
	LogFormat string
}

// resolveConfig applies, in increasing precedence: defaults, the config
// file, the environment (including .env files), then flags.
func resolveConfig(opts Options) (cfgpkg.Config, error) {
	if err := cfgpkg.LoadDotEnv(opts.EnvFiles...); err != nil {
		return cfgpkg.Config{}, err
	}
	cfg, err := cfgpkg.Load(opts.ConfigPath)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Storage.DataDir, opts.DataDir)
	set(&cfg.Server.GRPCAddr, opts.GRPCAddr)
	set(&cfg.Server.HTTPAddr, opts.HTTPAddr)
	set(&cfg.Storage.Fsync, opts.Fsync)
	set(&cfg.Log.Level, opts.LogLevel)
	set(&cfg.Log.Format, opts.LogFormat)

	if _, err := pebblestore.ParseFsyncMode(cfg.Storage.Fsync); err != nil {
		return cfgpkg.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg *logpkg.Config) logpkg.Logger {
	logger, err := logpkg.ApplyConfig(cfg)
	if err == nil {
		return logger
	}
	lvl := logpkg.InfoLevel
	if l, e := logpkg.ParseLevel(cfg.Level); e == nil {
		lvl = l
	}
	return logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(opts)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(&cfg.Log)
	// Pebble logs through the stdlib logger.
	logpkg.RedirectStdLog(logger)

	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("Starting party search server",
		logpkg.Str("grpc", cfg.Server.GRPCAddr),
		logpkg.Str("http", cfg.Server.HTTPAddr),
		logpkg.Str("data_dir", cfg.Storage.DataDir),
		logpkg.Str("fsync", cfg.Storage.Fsync),
		logpkg.Str("level", cfg.Log.Level),
		logpkg.Str("format", cfg.Log.Format),
		logpkg.Int("feed_buffer", cfg.Feed.SubscriberBuffer),
	)

	gsrv := grpcserver.New(rt)
	hsrv := httpserver.New(rt, logger)

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, cfg.Server.GRPCAddr); err != nil && sctx.Err() == nil {
			logger.Error("grpc server failed", logpkg.Err(err))
			errCh <- fmt.Errorf("grpc: %w", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, cfg.Server.HTTPAddr); err != nil && sctx.Err() == nil {
			logger.Error("http server failed", logpkg.Err(err))
			errCh <- fmt.Errorf("http: %w", err)
			stop()
		}
	}()

	<-sctx.Done()
	// Both transports shut down on sctx. Wait for them before the deferred
	// runtime close releases the store.
	wg.Wait()
	close(errCh)
	return <-errCh
}

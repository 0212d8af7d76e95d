package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// already set win over file values. With no paths, ./.env is tried. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// FromEnv overlays PARTYSEARCH_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("PARTYSEARCH_HTTP_ADDR", &cfg.Server.HTTPAddr)
	str("PARTYSEARCH_GRPC_ADDR", &cfg.Server.GRPCAddr)
	num("PARTYSEARCH_HEALTH_INTERVAL_MS", &cfg.Server.HealthIntervalMs)
	if v := os.Getenv("PARTYSEARCH_NODE_ID"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Server.NodeID = uint16(n)
		}
	}

	str("PARTYSEARCH_DATA_DIR", &cfg.Storage.DataDir)
	str("PARTYSEARCH_FSYNC", &cfg.Storage.Fsync)
	num("PARTYSEARCH_FSYNC_INTERVAL_MS", &cfg.Storage.FsyncIntervalMs)

	str("PARTYSEARCH_LOG_LEVEL", &cfg.Log.Level)
	str("PARTYSEARCH_LOG_FORMAT", &cfg.Log.Format)

	num("PARTYSEARCH_CACHE_LOAD_TIMEOUT_MS", &cfg.Cache.LoadTimeoutMs)

	num("PARTYSEARCH_FEED_BUFFER", &cfg.Feed.SubscriberBuffer)
	num("PARTYSEARCH_FEED_PING_MS", &cfg.Feed.PingIntervalMs)
	list := func(key string, dst *[]string) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		*dst = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				*dst = append(*dst, p)
			}
		}
	}
	list("PARTYSEARCH_ALLOWED_ORIGINS", &cfg.Feed.OriginPatterns)

	if v := os.Getenv("PARTYSEARCH_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RPS = f
		}
	}
	num("PARTYSEARCH_RATE_LIMIT_BURST", &cfg.RateLimit.Burst)
	list("PARTYSEARCH_TRUSTED_PROXIES", &cfg.RateLimit.TrustedProxies)

	str("PARTYSEARCH_REFERENCE_PATH", &cfg.Reference.Path)
}

package config

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rzbill/partysearch/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Log       log.Config      `json:"log" yaml:"log"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Feed      FeedConfig      `json:"feed" yaml:"feed"`
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
	Reference ReferenceConfig `json:"reference" yaml:"reference"`
}

// ServerConfig holds listener addresses.
type ServerConfig struct {
	HTTPAddr string `json:"httpAddr" yaml:"httpAddr"`
	GRPCAddr string `json:"grpcAddr" yaml:"grpcAddr"`
	// HealthIntervalMs is how often the gRPC health status is re-evaluated.
	HealthIntervalMs int `json:"healthIntervalMs" yaml:"healthIntervalMs"`
	// NodeID is stamped into subscriber and request ids.
	NodeID uint16 `json:"nodeId" yaml:"nodeId"`
}

// StorageConfig selects the Pebble directory and durability policy.
type StorageConfig struct {
	DataDir         string `json:"dataDir" yaml:"dataDir"`
	Fsync           string `json:"fsync" yaml:"fsync"` // always|interval|never
	FsyncIntervalMs int    `json:"fsyncIntervalMs" yaml:"fsyncIntervalMs"`
}

// CacheConfig tunes the snapshot cache.
type CacheConfig struct {
	LoadTimeoutMs int `json:"loadTimeoutMs" yaml:"loadTimeoutMs"`
}

// FeedConfig tunes the live feed.
type FeedConfig struct {
	SubscriberBuffer int `json:"subscriberBuffer" yaml:"subscriberBuffer"`
	PingIntervalMs   int `json:"pingIntervalMs" yaml:"pingIntervalMs"`
	// OriginPatterns are accepted WebSocket origins besides the request host.
	OriginPatterns []string `json:"originPatterns" yaml:"originPatterns"`
}

// RateLimitConfig limits submissions per client address. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `json:"rps" yaml:"rps"`
	Burst int     `json:"burst" yaml:"burst"`
	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For
	// header is believed. Empty means the header is ignored.
	TrustedProxies []string `json:"trustedProxies" yaml:"trustedProxies"`
}

// TrustedPrefixes parses TrustedProxies. A bare address becomes a single
// host prefix.
func (c RateLimitConfig) TrustedPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// ReferenceConfig points at the maps/professions catalog file.
type ReferenceConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:         ":8080",
			GRPCAddr:         ":9090",
			HealthIntervalMs: 5000,
			NodeID:           1,
		},
		Storage: StorageConfig{
			DataDir:         DefaultDataDir(),
			Fsync:           "always",
			FsyncIntervalMs: 5,
		},
		Log:   log.Config{Level: "info", Format: "text"},
		Cache: CacheConfig{LoadTimeoutMs: 5000},
		Feed: FeedConfig{
			SubscriberBuffer: 16,
			PingIntervalMs:   30000,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

// LoadTimeout is the bound on one snapshot load.
func (c CacheConfig) LoadTimeout() time.Duration { return ms(c.LoadTimeoutMs) }

// PingInterval is the period of server-initiated WebSocket pings.
func (c FeedConfig) PingInterval() time.Duration { return ms(c.PingIntervalMs) }

// FsyncInterval is the WAL group-commit window for fsync=interval.
func (c StorageConfig) FsyncInterval() time.Duration { return ms(c.FsyncIntervalMs) }

// HealthInterval is the gRPC health re-check period.
func (c ServerConfig) HealthInterval() time.Duration { return ms(c.HealthIntervalMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Load reads configuration from a JSON or YAML file (by extension) on top of
// the defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if _, err := cfg.RateLimit.TrustedPrefixes(); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

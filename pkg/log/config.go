package log

import (
	"bytes"
	"fmt"
	stdlog "log"
	"log/slog"
	"strings"
)

// Config describes a logger declaratively.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text|json
	// Outputs defaults to a single console output.
	Outputs []OutputConfig `json:"outputs" yaml:"outputs"`
	// Redact lists field keys whose values are replaced before writing.
	Redact   []string        `json:"redact" yaml:"redact"`
	Sampling *SamplingConfig `json:"sampling" yaml:"sampling"`
}

// OutputConfig selects an output sink.
type OutputConfig struct {
	Type string `json:"type" yaml:"type"` // console|file|null
	Path string `json:"path" yaml:"path"`
}

// SamplingConfig keeps the first Initial records per message and then every
// Thereafter-th one.
type SamplingConfig struct {
	Initial    int `json:"initial" yaml:"initial"`
	Thereafter int `json:"thereafter" yaml:"thereafter"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := []LoggerOption{WithLevel(level)}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts = append(opts, WithFormatter(&TextFormatter{}))
	case "json":
		opts = append(opts, WithFormatter(&JSONFormatter{}))
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case "", "console":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case "file":
			fo, err := NewFileOutput(oc.Path)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			opts = append(opts, WithOutput(fo))
		case "null":
			opts = append(opts, WithOutput(NullOutput{}))
		default:
			return nil, fmt.Errorf("unknown log output %q", oc.Type)
		}
	}

	l := newBaseLogger(opts...)
	hopts := []handlerOption{redactKeys(cfg.Redact)}
	if cfg.Sampling != nil {
		hopts = append(hopts, sampleEvery(cfg.Sampling.Initial, cfg.Sampling.Thereafter))
	}
	l.slog = slog.New(newSinkHandler(l, hopts...))
	return l, nil
}

// stdWriter adapts Logger to io.Writer for the standard library logger.
type stdWriter struct {
	logger Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(bytes.TrimRight(p, "\n"))
	w.logger.Info(msg, Str("source", "stdlog"))
	return len(p), nil
}

// ToStdLogger returns a *log.Logger that writes through logger.
func ToStdLogger(logger Logger) *stdlog.Logger {
	return stdlog.New(stdWriter{logger: logger}, "", 0)
}

// RedirectStdLog sends the standard library's default logger (used by Pebble
// among others) through logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdWriter{logger: logger})
}

// Package log is the structured logger shared by the party-search server, the
// live-feed hub and the client. Call sites use leveled methods with typed
// fields; records flow through log/slog into a formatter and one or more
// outputs.
//
//	l := log.NewLogger(log.WithLevel(log.DebugLevel), log.WithFormatter(&log.TextFormatter{}))
//	l.With(log.Component("feed")).Info("subscriber connected", log.Int("subscribers", 3))
//
// ApplyConfig builds a logger from the server's YAML log section, including
// field redaction and per-message sampling. RedirectStdLog and ToStdLogger
// route standard library logging (Pebble, net/http) through the same sink.
package log

package log

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
)

const redacted = "[REDACTED]"

// sinkHandler is the slog.Handler behind every BaseLogger. Records are turned
// into an Entry, formatted once and fanned out to the logger's outputs.
type sinkHandler struct {
	owner  *BaseLogger
	base   []slog.Attr
	redact map[string]bool
	sample *sampler
}

type handlerOption func(*sinkHandler)

func redactKeys(keys []string) handlerOption {
	return func(h *sinkHandler) {
		if len(keys) == 0 {
			return
		}
		h.redact = make(map[string]bool, len(keys))
		for _, k := range keys {
			h.redact[k] = true
		}
	}
}

func sampleEvery(initial, thereafter int) handlerOption {
	return func(h *sinkHandler) {
		if thereafter > 0 {
			h.sample = newSampler(initial, thereafter)
		}
	}
}

func newSinkHandler(owner *BaseLogger, opts ...handlerOption) *sinkHandler {
	h := &sinkHandler{owner: owner}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return levelFromSlog(level) >= h.owner.GetLevel()
}

func (h *sinkHandler) Handle(_ context.Context, r slog.Record) error {
	if h.sample != nil && !h.sample.keep(r.Level, r.Message) {
		return nil
	}
	entry := &Entry{
		Level:     levelFromSlog(r.Level),
		Message:   r.Message,
		Fields:    h.collect(r),
		Timestamp: r.Time,
		Caller:    callerOf(r.PC),
	}
	line, err := h.owner.formatter.Format(entry)
	if err != nil {
		return err
	}
	for _, out := range h.owner.outputs {
		_ = out.Write(entry, line)
	}
	return nil
}

// collect flattens base and record attributes into Fields, record values
// winning on key clashes.
func (h *sinkHandler) collect(r slog.Record) Fields {
	fields := make(Fields, len(h.base)+r.NumAttrs())
	add := func(a slog.Attr) bool {
		if h.redact[a.Key] {
			fields[a.Key] = redacted
		} else {
			fields[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.base {
		add(a)
	}
	r.Attrs(add)
	return fields
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.base = append(append(make([]slog.Attr, 0, len(h.base)+len(attrs)), h.base...), attrs...)
	return &clone
}

// WithGroup flattens: group names are dropped.
func (h *sinkHandler) WithGroup(string) slog.Handler { return h }

func callerOf(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	return f.File + ":" + strconv.Itoa(f.Line)
}

// sampler passes the first `initial` records of each level and message pair,
// then one in every `thereafter`.
type sampler struct {
	initial    uint64
	thereafter uint64
	seen       sync.Map // string -> *atomic.Uint64
}

func newSampler(initial, thereafter int) *sampler {
	return &sampler{initial: uint64(max(initial, 0)), thereafter: uint64(thereafter)}
}

func (s *sampler) keep(level slog.Level, msg string) bool {
	v, _ := s.seen.LoadOrStore(level.String()+"|"+msg, new(atomic.Uint64))
	n := v.(*atomic.Uint64).Add(1) - 1
	if n < s.initial {
		return true
	}
	return (n-s.initial)%s.thereafter == 0
}

var slogLevels = map[Level]slog.Level{
	DebugLevel: slog.LevelDebug,
	InfoLevel:  slog.LevelInfo,
	WarnLevel:  slog.LevelWarn,
	ErrorLevel: slog.LevelError,
}

func levelToSlog(l Level) slog.Level {
	if sl, ok := slogLevels[l]; ok {
		return sl
	}
	return slog.LevelError
}

func levelFromSlog(sl slog.Level) Level {
	switch {
	case sl < slog.LevelInfo:
		return DebugLevel
	case sl < slog.LevelWarn:
		return InfoLevel
	case sl < slog.LevelError:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

func fieldArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

func fieldAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// sorted returns fs as Field values in key order.
func (fs Fields) sorted() []Field {
	out := make([]Field, 0, len(fs))
	for k, v := range fs {
		out = append(out, Field{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

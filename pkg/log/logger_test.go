package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level Level, f Formatter) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(&buf)))
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"", InfoLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Fatalf("ParseLevel(%q) err=%v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q)=%v want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelGate(t *testing.T) {
	l, buf := newBufferLogger(t, WarnLevel, &TextFormatter{})
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked through warn gate: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn missing: %q", out)
	}
}

func TestJSONFieldsAndWith(t *testing.T) {
	l, buf := newBufferLogger(t, DebugLevel, &JSONFormatter{})
	l.With(Component("cache")).Info("refreshed", Int("partitions", 3), Err(errors.New("boom")))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if got["component"] != "cache" {
		t.Fatalf("component: %v", got["component"])
	}
	if got["partitions"] != float64(3) {
		t.Fatalf("partitions: %v", got["partitions"])
	}
	if got["error"] != "boom" {
		t.Fatalf("error: %v", got["error"])
	}
	if got["msg"] != "refreshed" {
		t.Fatalf("msg: %v", got["msg"])
	}
}

func TestApplyConfigRedacts(t *testing.T) {
	l, err := ApplyConfig(&Config{Level: "info", Format: "json", Redact: []string{"message"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var buf bytes.Buffer
	bl := l.(*BaseLogger)
	bl.outputs = []Output{NewWriterOutput(&buf)}
	l.Info("entry", Str("message", "WTS ecto"))
	if strings.Contains(buf.String(), "WTS ecto") {
		t.Fatalf("value not redacted: %q", buf.String())
	}
}

func TestApplyConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSamplerKeepsInitialThenEveryNth(t *testing.T) {
	s := newSampler(2, 3)
	var kept []int
	for i := 0; i < 10; i++ {
		if s.keep(0, "refresh") {
			kept = append(kept, i)
		}
	}
	want := []int{0, 1, 2, 5, 8}
	if len(kept) != len(want) {
		t.Fatalf("kept %v, want %v", kept, want)
	}
	for i := range want {
		if kept[i] != want[i] {
			t.Fatalf("kept %v, want %v", kept, want)
		}
	}
	if !s.keep(0, "other") {
		t.Fatalf("distinct message should start its own count")
	}
}

func TestSetLevelReachesChildren(t *testing.T) {
	l, buf := newBufferLogger(t, InfoLevel, &JSONFormatter{})
	child := l.With(Str("component", "hub"))
	l.SetLevel(ErrorLevel)
	child.Warn("dropped")
	if buf.Len() != 0 {
		t.Fatalf("child ignored parent level: %q", buf.String())
	}
}

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Format: "json", Component: ComponentLedger, Output: buf})
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerAddsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo).WithComponent(ComponentSearch)

	logger.Info("Booking search", FieldCount, 3)

	got := lines(t, &buf)
	if len(got) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got))
	}
	if got[0][FieldComponent] != ComponentSearch {
		t.Errorf("component = %v, want %s", got[0][FieldComponent], ComponentSearch)
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Errorf("component attribute duplicated: %s", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelWarn)

	logger.Info("dropped")
	logger.Debug("dropped")
	logger.Warn("kept")

	got := lines(t, &buf)
	if len(got) != 1 || got[0]["msg"] != "kept" {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpProject).
		WithEntry("e-1", "12.50", "outgoing", "pending")

	args := f.ToSlice()
	if len(args)%2 != 0 {
		t.Fatalf("ToSlice returned an odd number of values: %v", args)
	}
	m := map[string]any{}
	for i := 0; i < len(args); i += 2 {
		m[args[i].(string)] = args[i+1]
	}
	if m[FieldOperation] != OpProject || m[FieldEntryID] != "e-1" || m[FieldAmount] != "12.50" {
		t.Errorf("unexpected fields: %v", m)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo)

	var inner *Logger
	h := Middleware(logger, func(*http.Request) string { return "req-7" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/x?temporal=past", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if inner == nil || inner.Component() != ComponentHTTP {
		t.Fatalf("request logger not stored in context")
	}
	got := lines(t, &buf)
	if len(got) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(got), buf.String())
	}
	line := got[0]
	if line["level"] != "WARN" {
		t.Errorf("level = %v, want WARN for 404", line["level"])
	}
	if line[FieldRequestID] != "req-7" || line[FieldPath] != "/api/bookings/x" {
		t.Errorf("unexpected request fields: %v", line)
	}
	if line[FieldStatusCode] != float64(http.StatusNotFound) {
		t.Errorf("status_code = %v, want 404", line[FieldStatusCode])
	}
}

func TestFromContextFallsBack(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(req.Context()) == nil {
		t.Fatal("FromContext must never return nil")
	}
}
